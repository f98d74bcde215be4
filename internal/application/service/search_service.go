package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/expense-search/internal/application/dispatcher"
	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/domain/event"
	"github.com/ledgerline/expense-search/internal/domain/query"
	"github.com/ledgerline/expense-search/internal/domain/sections"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ErrSnapshotNotFound is returned when no snapshot exists for a query hash.
var ErrSnapshotNotFound = errors.New("no snapshot for query")

// ErrInvalidPayload is returned when an ingested snapshot body cannot be
// decoded as search results.
var ErrInvalidPayload = errors.New("invalid snapshot payload")

// SearchResponse is the outcome of one executed search.
type SearchResponse struct {
	Query    *query.SearchQueryJSON `json:"query"`
	Sections *sections.Sections     `json:"sections"`
}

// QueryDescription is the canonical form of a query without executing it.
type QueryDescription struct {
	Query       *query.SearchQueryJSON `json:"query"`
	QueryString string                 `json:"queryString"`
}

// SearchService executes searches against stored snapshots and ingests
// new snapshots from the upstream producer.
type SearchService interface {
	// Execute canonicalizes rawQuery, loads the matching snapshot and
	// builds the sorted result sections
	Execute(ctx context.Context, rawQuery string) (*SearchResponse, error)

	// Describe canonicalizes rawQuery without touching storage
	Describe(ctx context.Context, rawQuery string) (*QueryDescription, error)

	// Ingest validates and stores a result snapshot for rawQuery
	Ingest(ctx context.Context, rawQuery string, payload []byte) (*query.SearchQueryJSON, error)

	// PruneSnapshots removes superseded and expired snapshot rows
	PruneSnapshots(ctx context.Context) (int64, error)
}

type searchServiceImpl struct {
	snapshotRepo   port.SnapshotRepository
	referenceRepo  port.ReferenceDataRepository
	txManager      port.TransactionManager
	dispatcher     dispatcher.Dispatcher
	builder        *sections.Builder
	snapshotMaxAge time.Duration
	logger         Logger
}

// NewSearchService creates a new SearchService. snapshotMaxAge of zero
// disables age-based pruning; superseded rows are always prunable.
func NewSearchService(
	snapshotRepo port.SnapshotRepository,
	referenceRepo port.ReferenceDataRepository,
	txManager port.TransactionManager,
	disp dispatcher.Dispatcher,
	builder *sections.Builder,
	snapshotMaxAge time.Duration,
	logger Logger,
) SearchService {
	return &searchServiceImpl{
		snapshotRepo:   snapshotRepo,
		referenceRepo:  referenceRepo,
		txManager:      txManager,
		dispatcher:     disp,
		builder:        builder,
		snapshotMaxAge: snapshotMaxAge,
		logger:         logger,
	}
}

// Execute runs a search: canonicalize, load snapshot, build sections.
func (s *searchServiceImpl) Execute(ctx context.Context, rawQuery string) (*SearchResponse, error) {
	q, perr := query.BuildSearchQueryJSON(rawQuery)
	if perr != nil {
		s.logger.Info("Rejected malformed query", "input", rawQuery, "position", perr.Position, "reason", perr.Reason)
		return nil, perr
	}

	snap, err := s.snapshotRepo.GetLatestByHash(ctx, q.Hash)
	if err != nil {
		s.logger.Error("Failed to load snapshot", "error", err, "hash", q.Hash)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, ErrSnapshotNotFound
	}

	var results entity.SearchResults
	if err := json.Unmarshal(snap.Payload, &results); err != nil {
		s.logger.Error("Failed to decode snapshot payload", "error", err, "hash", q.Hash, "snapshot_id", snap.ID)
		return nil, fmt.Errorf("decode snapshot %d: %w", snap.ID, err)
	}

	secs := s.builder.Build(q.Type, q.Status, &results)
	secs.Sort(q.SortBy, q.SortOrder)

	if s.dispatcher != nil {
		evt := event.NewEvent(
			event.TypeSearchExecuted,
			q.Hash,
			query.ToQueryString(q),
			map[string]interface{}{
				"recent_search_hash": int(q.RecentSearchHash),
				"type":               string(q.Type),
				"status":             string(q.Status),
			},
		)
		// Fire async to keep the request path free of handler latency
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	s.logger.Info("Search executed", "hash", q.Hash, "type", q.Type, "status", q.Status)
	return &SearchResponse{Query: q, Sections: secs}, nil
}

// Describe canonicalizes a query without executing it.
func (s *searchServiceImpl) Describe(ctx context.Context, rawQuery string) (*QueryDescription, error) {
	q, perr := query.BuildSearchQueryJSON(rawQuery)
	if perr != nil {
		s.logger.Info("Rejected malformed query", "input", rawQuery, "position", perr.Position, "reason", perr.Reason)
		return nil, perr
	}
	return &QueryDescription{Query: q, QueryString: query.ToQueryString(q)}, nil
}

// Ingest stores a new snapshot and merges discovered identities into the
// reference directory.
func (s *searchServiceImpl) Ingest(ctx context.Context, rawQuery string, payload []byte) (*query.SearchQueryJSON, error) {
	q, perr := query.BuildSearchQueryJSON(rawQuery)
	if perr != nil {
		s.logger.Info("Rejected malformed query", "input", rawQuery, "position", perr.Position, "reason", perr.Reason)
		return nil, perr
	}

	var results entity.SearchResults
	if err := json.Unmarshal(payload, &results); err != nil {
		s.logger.Error("Rejected malformed snapshot payload", "error", err, "hash", q.Hash)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	snapshot := &entity.SearchSnapshot{
		Hash:    q.Hash,
		Query:   query.ToQueryString(q),
		Payload: payload,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.snapshotRepo.Save(txCtx, snapshot); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		if len(results.PersonalDetails) > 0 {
			if err := s.referenceRepo.UpsertPersonalDetails(txCtx, results.PersonalDetails); err != nil {
				return fmt.Errorf("upsert personal details: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to ingest snapshot", "error", err, "hash", q.Hash)
		return nil, err
	}

	if s.dispatcher != nil {
		evt := event.NewEvent(
			event.TypeSnapshotIngested,
			q.Hash,
			snapshot.Query,
			map[string]interface{}{
				"snapshot_id":  int(snapshot.ID),
				"payload_size": len(payload),
			},
		)
		s.dispatcher.DispatchAsync(ctx, evt)
	}

	s.logger.Info("Snapshot ingested", "hash", q.Hash, "snapshot_id", snapshot.ID, "payload_size", len(payload))
	return q, nil
}

// PruneSnapshots drops superseded rows and rows past the retention age.
func (s *searchServiceImpl) PruneSnapshots(ctx context.Context) (int64, error) {
	superseded, err := s.snapshotRepo.DeleteSuperseded(ctx)
	if err != nil {
		s.logger.Error("Failed to prune superseded snapshots", "error", err)
		return 0, err
	}

	var expired int64
	if s.snapshotMaxAge > 0 {
		cutoff := time.Now().Add(-s.snapshotMaxAge)
		expired, err = s.snapshotRepo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			s.logger.Error("Failed to prune expired snapshots", "error", err)
			return superseded, err
		}
	}

	total := superseded + expired
	if total > 0 {
		if s.dispatcher != nil {
			evt := event.NewEvent(event.TypeSnapshotPruned, 0, "", map[string]interface{}{
				"superseded": int(superseded),
				"expired":    int(expired),
			})
			s.dispatcher.DispatchAsync(ctx, evt)
		}
		s.logger.Info("Snapshots pruned", "superseded", superseded, "expired", expired)
	}
	return total, nil
}
