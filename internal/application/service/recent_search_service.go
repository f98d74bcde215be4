package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerline/expense-search/internal/application/dispatcher"
	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/event"
)

// defaultRecentLimit caps list responses when the caller names no limit.
const defaultRecentLimit = 10

// RecentSearchService records query usage and applies the retention policy.
// Recording happens through the event dispatcher, not on the request path.
type RecentSearchService interface {
	// List retrieves recent searches, most recently used first
	List(ctx context.Context, limit int) ([]*entity.RecentSearch, error)

	// HandleSearchExecuted is the dispatcher handler that records one use
	// of a query
	HandleSearchExecuted(ctx context.Context, evt *event.Event) error

	// Prune removes rows past the retention age and beyond the retention
	// count, returning the number of rows deleted
	Prune(ctx context.Context) (int64, error)
}

type recentSearchServiceImpl struct {
	repo       port.RecentSearchRepository
	dispatcher dispatcher.Dispatcher
	maxCount   int
	maxAge     time.Duration
	logger     Logger
}

// NewRecentSearchService creates a new RecentSearchService. maxCount and
// maxAge of zero disable the respective retention bound.
func NewRecentSearchService(
	repo port.RecentSearchRepository,
	disp dispatcher.Dispatcher,
	maxCount int,
	maxAge time.Duration,
	logger Logger,
) RecentSearchService {
	return &recentSearchServiceImpl{
		repo:       repo,
		dispatcher: disp,
		maxCount:   maxCount,
		maxAge:     maxAge,
		logger:     logger,
	}
}

// List retrieves recent searches ordered by last use.
func (s *recentSearchServiceImpl) List(ctx context.Context, limit int) ([]*entity.RecentSearch, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	searches, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list recent searches", "error", err, "limit", limit)
		return nil, err
	}
	return searches, nil
}

// HandleSearchExecuted records one use of the executed query, keyed by the
// recent-search hash carried in the event payload. That hash ignores sort,
// so re-sorting a result set does not spawn a second recent entry.
func (s *recentSearchServiceImpl) HandleSearchExecuted(ctx context.Context, evt *event.Event) error {
	recentHash, ok := evt.LookupPayloadInt("recent_search_hash")
	if !ok {
		return fmt.Errorf("event %s carries no recent_search_hash", evt.ID)
	}

	usedAt := evt.Timestamp
	if usedAt.IsZero() {
		usedAt = time.Now()
	}

	if err := s.repo.RecordUse(ctx, uint32(recentHash), evt.Query, usedAt); err != nil {
		s.logger.Error("Failed to record recent search", "error", err, "recent_search_hash", recentHash)
		return err
	}

	if s.dispatcher != nil {
		noted := event.NewEventWithCorrelation(
			event.TypeRecentSearchNoted,
			uint32(recentHash),
			evt.Query,
			nil,
			evt.CorrelationID,
		)
		s.dispatcher.DispatchAsync(ctx, noted)
	}

	s.logger.Info("Recent search recorded", "recent_search_hash", recentHash, "query", evt.Query)
	return nil
}

// Prune applies the age bound then the count bound.
func (s *recentSearchServiceImpl) Prune(ctx context.Context) (int64, error) {
	var total int64

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		n, err := s.repo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			s.logger.Error("Failed to prune recent searches by age", "error", err)
			return total, err
		}
		total += n
	}

	if s.maxCount > 0 {
		n, err := s.repo.DeleteBeyondCount(ctx, s.maxCount)
		if err != nil {
			s.logger.Error("Failed to prune recent searches by count", "error", err)
			return total, err
		}
		total += n
	}

	if total > 0 {
		s.logger.Info("Recent searches pruned", "deleted", total)
	}
	return total, nil
}
