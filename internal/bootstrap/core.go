package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/prangggshu/legal-chatbot/internal/config"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
	"github.com/prangggshu/legal-chatbot/internal/core/rerank"
	"github.com/prangggshu/legal-chatbot/internal/core/retrieval"
	"github.com/prangggshu/legal-chatbot/internal/core/usecase"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/crossencoder"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/embedcache"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/lexicon"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/llm/cloud"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/llm/ollama"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/llm/router"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/resilience"
	"github.com/prangggshu/legal-chatbot/internal/infrastructure/risk"
	"github.com/prangggshu/legal-chatbot/internal/observability/metrics"
)

// Core is the retrieval and answering stack shared by every process. It has
// no database or broker dependencies.
type Core struct {
	Engine   *retrieval.Engine
	Reranker *rerank.Reranker
	Cloud    *cloud.Generator
	Answers  ports.AnswerGenerator
	Risk     ports.RiskDetector
	AskUC    *usecase.AskUseCase
	Metrics  *metrics.CoreMetrics
	Executor *resilience.Executor
}

type CoreOptions struct {
	Logger *slog.Logger
	// Registerer receives the core collectors; nil disables metrics.
	Registerer prometheus.Registerer
}

func NewCore(cfg config.Config, opts CoreOptions) (*Core, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var coreMetrics *metrics.CoreMetrics
	resilienceCfg := resilience.DefaultConfig()
	resilienceCfg.RetryMaxAttempts = cfg.ResilienceRetryAttempts
	resilienceCfg.BreakerEnabled = cfg.ResilienceBreaker
	resilienceCfg.Logger = logger
	if opts.Registerer != nil {
		coreMetrics = metrics.NewCoreMetrics("legal", opts.Registerer)
		resilienceCfg.OnBreakerStateChange = coreMetrics.ObserveBreakerState
	}
	executor := resilience.NewExecutor(resilienceCfg)

	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := embedcache.New(ollama.NewEmbedder(ollamaClient), cfg.OllamaEmbedModel, cfg.EmbedCacheSize)

	engineOpts := retrieval.EngineOptions{
		Config: retrieval.Config{
			MaxCandidates:           cfg.RetrievalMaxCandidates,
			StrictThreshold:         cfg.RetrievalStrictThreshold,
			LenientThreshold:        cfg.RetrievalLenientThreshold,
			KnowledgeBaseThreshold:  cfg.RetrievalKBMergeThreshold,
			FuzzyQuestionRatio:      cfg.RetrievalFuzzyRatio,
			LegalRefConfidence:      cfg.RetrievalLegalRefConfidence,
			ExactQuestionConfidence: cfg.RetrievalExactQuestionConf,
		},
		Lexicon:   lex,
		IndexDir:  cfg.IndexDir,
		IndexKind: retrieval.ParseIndexKind(cfg.IndexKind),
		SeedPath:  cfg.SeedPath,
		Logger:    logger,
	}
	rerankOpts := rerank.Options{
		ModelPath: cfg.RerankerModelPath,
		MinScore:  cfg.RerankerMinScore,
		Logger:    logger,
	}
	routerOpts := router.Options{
		LocalBudget: cfg.LocalLLMBudget,
		Logger:      logger,
	}
	if coreMetrics != nil {
		engineOpts.Observer = coreMetrics
		rerankOpts.Observer = coreMetrics
		routerOpts.Observer = coreMetrics
	}

	engine := retrieval.NewEngine(embedder, engineOpts)
	loader := crossencoder.NewLoader(&http.Client{Timeout: 10 * time.Second}, executor)
	reranker := rerank.New(loader.Load, rerankOpts)

	cloudGen := cloud.New(cloud.Options{
		BaseURL:  cfg.CloudLLMBaseURL,
		APIKey:   cfg.CloudLLMAPIKey,
		Model:    cfg.CloudLLMModel,
		Executor: executor,
	})
	answers := router.New(ollama.NewGenerator(ollamaClient), cloudGen, routerOpts)
	detector := risk.NewKeywordDetector()

	askUC := usecase.NewAskUseCase(engine, reranker, answers, cloudGen, detector, usecase.AskOptions{
		CandidatesTopK: cfg.RetrievalCandidatesTopK,
		Logger:         logger,
	})

	return &Core{
		Engine:   engine,
		Reranker: reranker,
		Cloud:    cloudGen,
		Answers:  answers,
		Risk:     detector,
		AskUC:    askUC,
		Metrics:  coreMetrics,
		Executor: executor,
	}, nil
}
