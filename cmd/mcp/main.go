package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/prangggshu/legal-chatbot/internal/adapters/mcp"
	"github.com/prangggshu/legal-chatbot/internal/bootstrap"
	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// stdout carries the protocol, so logs go to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "legal-mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	core, err := bootstrap.NewCore(cfg, bootstrap.CoreOptions{Logger: logger})
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	if !core.Engine.Bootstrap(context.Background()) {
		logger.Warn("index_unavailable", "seed_path", cfg.SeedPath, "index_dir", cfg.IndexDir)
	}

	s := mcpadapter.NewServer(mcpadapter.NewTools(core.Engine, core.AskUC))
	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
