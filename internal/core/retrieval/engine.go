package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/prangggshu/legal-chatbot/internal/core/domain"
	"github.com/prangggshu/legal-chatbot/internal/core/ports"
)

const lockFileName = ".index.lock"

// Observer receives retrieval outcomes, e.g. for metrics.
type Observer interface {
	ObserveRetrieval(tier domain.Tier, confidence float64, duration time.Duration)
	ObserveIndexSize(stats domain.IndexStats)
}

type noopObserver struct{}

func (noopObserver) ObserveRetrieval(domain.Tier, float64, time.Duration) {}
func (noopObserver) ObserveIndexSize(domain.IndexStats)                    {}

type EngineOptions struct {
	Config    Config
	Lexicon   Lexicon
	IndexDir  string
	IndexKind IndexKind
	SeedPath  string
	Observer  Observer
	Logger    *slog.Logger
}

// Engine owns the Store. Reads share an RWMutex; writes hold it exclusively
// and then take a file lock on the snapshot directory shared with other
// processes, so one flock handle is never used by two goroutines at once.
type Engine struct {
	mu           sync.RWMutex
	store        *Store
	orchestrator *Orchestrator
	fileLock     *flock.Flock
	seedPath     string
	observer     Observer
	logger       *slog.Logger
}

func NewEngine(embedder ports.Embedder, opts EngineOptions) *Engine {
	lexicon := opts.Lexicon
	if len(lexicon.StopWords) == 0 && len(lexicon.Synonyms) == 0 {
		lexicon = DefaultLexicon()
	}
	observer := opts.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		store:        NewStore(embedder, StoreOptions{Dir: opts.IndexDir, Kind: opts.IndexKind}),
		orchestrator: NewOrchestrator(opts.Config, NewLexicalExtractor(lexicon)),
		seedPath:     opts.SeedPath,
		observer:     observer,
		logger:       logger,
	}
	if opts.IndexDir != "" {
		e.fileLock = flock.New(filepath.Join(opts.IndexDir, lockFileName))
	} else {
		logger.Warn("index_memory_only", "reason", "empty index dir")
	}
	return e
}

// Bootstrap loads the snapshot or seeds a new index. It reports whether an
// index is available; a missing seed is not an error.
func (e *Engine) Bootstrap(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock, err := e.lockFiles(false)
	if err != nil {
		e.logger.Warn("index_lock_failed", "error", err)
		return false
	}
	defer unlock()

	if err := e.store.BootstrapFromSeed(ctx, e.seedPath); err != nil {
		e.logger.Warn("index_bootstrap_skipped", "seed_path", e.seedPath, "error", err)
		return false
	}
	stats := e.store.Stats()
	e.observer.ObserveIndexSize(stats)
	e.logger.Info("index_ready", "count", stats.Count, "dimension", stats.Dimension, "index_kind", stats.Kind)
	return true
}

// Add indexes chunks with the given source and persists the snapshot.
func (e *Engine) Add(ctx context.Context, chunks []domain.Chunk, source domain.Source) (int, error) {
	var added int
	err := e.Update(ctx, func(ctx context.Context, store *Store) error {
		n, err := store.Add(ctx, chunks, source)
		added = n
		return err
	})
	return added, err
}

// Update refreshes from the latest snapshot, applies fn and saves, holding
// the process lock and then the file lock.
func (e *Engine) Update(ctx context.Context, fn func(context.Context, *Store) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock, err := e.lockFiles(false)
	if err != nil {
		return err
	}
	defer unlock()

	if err := e.store.Load(); err != nil && !domain.IsKind(err, domain.ErrSnapshotMissing) {
		e.logger.Warn("index_refresh_skipped", "error", err)
	}
	if err := fn(ctx, e.store); err != nil {
		return err
	}
	if e.store.Len() == 0 {
		return nil
	}
	if err := e.store.Save(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	e.observer.ObserveIndexSize(e.store.Stats())
	return nil
}

// Reload replaces in-memory state with the persisted snapshot.
func (e *Engine) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	unlock, err := e.lockFiles(true)
	if err != nil {
		return err
	}
	defer unlock()
	if err := e.store.Load(); err != nil {
		return fmt.Errorf("reload index: %w", err)
	}
	e.observer.ObserveIndexSize(e.store.Stats())
	return nil
}

// Retrieve never fails: embedding errors degrade to a no-match result.
func (e *Engine) Retrieve(ctx context.Context, query string) domain.Retrieval {
	start := time.Now()
	e.mu.RLock()
	result, err := e.orchestrator.Retrieve(ctx, e.store, query)
	e.mu.RUnlock()
	if err != nil {
		e.logger.Warn("retrieval_degraded", "error", err)
		result = domain.Retrieval{Tier: domain.TierNoMatch}
	}

	e.observer.ObserveRetrieval(result.Tier, result.Confidence, time.Since(start))
	e.logger.Debug("retrieval_resolved",
		"tier", result.Tier,
		"confidence", result.Confidence,
		"merged", result.Merged,
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return result
}

func (e *Engine) RetrieveCandidates(ctx context.Context, query string, k int) []domain.Candidate {
	e.mu.RLock()
	ranked, err := e.orchestrator.Ranker().Rank(ctx, e.store, query)
	e.mu.RUnlock()
	if err != nil {
		e.logger.Warn("candidate_ranking_degraded", "error", err)
		return nil
	}
	return TopK(ranked, k)
}

func (e *Engine) Stats() domain.IndexStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Stats()
}

func (e *Engine) lockFiles(shared bool) (func(), error) {
	if e.fileLock == nil {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(e.fileLock.Path()), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	lock := e.fileLock.Lock
	if shared {
		lock = e.fileLock.RLock
	}
	if err := lock(); err != nil {
		return nil, fmt.Errorf("lock index dir: %w", err)
	}
	return func() {
		if err := e.fileLock.Unlock(); err != nil {
			e.logger.Warn("index_unlock_failed", "error", err)
		}
	}, nil
}
