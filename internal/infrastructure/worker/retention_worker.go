package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerline/expense-search/internal/application/service"
)

// RetentionWorkerConfig holds configuration for the retention worker
type RetentionWorkerConfig struct {
	Interval time.Duration
}

// DefaultRetentionWorkerConfig returns default configuration
func DefaultRetentionWorkerConfig() RetentionWorkerConfig {
	return RetentionWorkerConfig{
		Interval: time.Hour,
	}
}

// RetentionWorker periodically prunes recent-search history and stale
// snapshot rows according to the configured retention bounds.
type RetentionWorker struct {
	config RetentionWorkerConfig

	searchService service.SearchService
	recentService service.RecentSearchService
	logger        *zap.Logger

	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc
	isRunning       bool
	lastRun         time.Time
	prunedRecent    int64
	prunedSnapshots int64
	lastError       error
}

// NewRetentionWorker creates a new retention worker
func NewRetentionWorker(
	config RetentionWorkerConfig,
	searchService service.SearchService,
	recentService service.RecentSearchService,
	logger *zap.Logger,
) *RetentionWorker {
	return &RetentionWorker{
		config:        config,
		searchService: searchService,
		recentService: recentService,
		logger:        logger,
	}
}

// Start begins the pruning loop
func (w *RetentionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("retention worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("RetentionWorker started",
		zap.Duration("interval", w.config.Interval))

	go w.pruneLoop()

	return nil
}

// Stop gracefully terminates the worker
func (w *RetentionWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("RetentionWorker stopped",
		zap.Int64("pruned_recent", w.prunedRecent),
		zap.Int64("pruned_snapshots", w.prunedSnapshots))

	return nil
}

// Name returns the worker name for identification
func (w *RetentionWorker) Name() string {
	return "RetentionWorker"
}

func (w *RetentionWorker) pruneLoop() {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Prune loop context cancelled")
			return

		case <-ticker.C:
			if err := w.pruneOnce(); err != nil {
				w.mu.Lock()
				w.lastError = err
				w.mu.Unlock()
				w.logger.Error("Retention pass failed", zap.Error(err))
			}

			w.mu.Lock()
			w.lastRun = time.Now()
			w.mu.Unlock()
		}
	}
}

// pruneOnce runs one retention pass. Both prunes run even if the first
// fails; errors are joined.
func (w *RetentionWorker) pruneOnce() error {
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var firstErr error

	recent, err := w.recentService.Prune(ctx)
	if err != nil {
		firstErr = fmt.Errorf("prune recent searches: %w", err)
	} else {
		w.mu.Lock()
		w.prunedRecent += recent
		w.mu.Unlock()
	}

	snapshots, err := w.searchService.PruneSnapshots(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("prune snapshots: %w", err)
		}
	} else {
		w.mu.Lock()
		w.prunedSnapshots += snapshots
		w.mu.Unlock()
	}

	if recent > 0 || snapshots > 0 {
		w.logger.Info("Retention pass complete",
			zap.Int64("recent_deleted", recent),
			zap.Int64("snapshots_deleted", snapshots))
	}

	return firstErr
}
