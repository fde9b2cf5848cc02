// Package cmd implements legalctl, an offline tool for building and querying
// the clause index without the api or worker processes.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/prangggshu/legal-chatbot/internal/bootstrap"
	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
	"github.com/prangggshu/legal-chatbot/internal/observability/logging"
)

type indexEngine interface {
	ports.RetrievalService
	ports.ChunkIndexer
	Bootstrap(ctx context.Context) bool
}

type runtime struct {
	cfg    config.Config
	engine indexEngine
	asker  ports.QuestionAnswerer
}

// loadRuntime is replaced in tests.
var loadRuntime = func(cfg config.Config, logger *slog.Logger) (*runtime, error) {
	core, err := bootstrap.NewCore(cfg, bootstrap.CoreOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, engine: core.Engine, asker: core.AskUC}, nil
}

type globalFlags struct {
	indexDir  string
	seedPath  string
	indexKind string
	logLevel  string
	json      bool
}

func Execute() error {
	_ = godotenv.Load()
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "legalctl",
		Short:         "Build and query the legal clause index",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.indexDir, "index-dir", "", "Snapshot directory (default INDEX_DIR)")
	cmd.PersistentFlags().StringVar(&flags.seedPath, "seed", "", "Seed question/clause file (default SEED_PATH)")
	cmd.PersistentFlags().StringVar(&flags.indexKind, "index-kind", "", "Vector index kind for new indexes: flat or hnsw")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level written to stderr")
	cmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Print JSON output")

	cmd.AddCommand(newBootstrapCmd(flags))
	cmd.AddCommand(newRetrieveCmd(flags))
	cmd.AddCommand(newCandidatesCmd(flags))
	cmd.AddCommand(newAskCmd(flags))
	cmd.AddCommand(newAddCmd(flags))
	cmd.AddCommand(newStatsCmd(flags))

	return cmd
}

func (f *globalFlags) config() config.Config {
	cfg := config.Load()
	if f.indexDir != "" {
		cfg.IndexDir = f.indexDir
	}
	if f.seedPath != "" {
		cfg.SeedPath = f.seedPath
	}
	if f.indexKind != "" {
		cfg.IndexKind = f.indexKind
	}
	return cfg
}

// open loads the runtime and brings the index up from snapshot or seed.
func (f *globalFlags) open(cmd *cobra.Command) (*runtime, error) {
	rt, err := loadRuntime(f.config(), newStderrLogger(cmd, f))
	if err != nil {
		return nil, fmt.Errorf("load runtime: %w", err)
	}
	rt.engine.Bootstrap(cmd.Context())
	return rt, nil
}

func newStderrLogger(cmd *cobra.Command, flags *globalFlags) *slog.Logger {
	return logging.NewTextLogger(cmd.ErrOrStderr(), flags.logLevel)
}

func (f *globalFlags) print(w io.Writer, payload any, text func(io.Writer)) error {
	if f.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	text(w)
	return nil
}

func joinArgs(args []string) (string, error) {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "parse arguments", fmt.Errorf("query is empty"))
	}
	return query, nil
}
