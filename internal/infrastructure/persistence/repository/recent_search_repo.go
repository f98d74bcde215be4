package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// RecentSearchRepository implements port.RecentSearchRepository
type RecentSearchRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRecentSearchRepository creates a new recent search repository
func NewRecentSearchRepository(db *sql.DB, logger *zap.Logger) port.RecentSearchRepository {
	return &RecentSearchRepository{
		db:     db,
		logger: logger,
	}
}

// RecordUse inserts the row for the hash or bumps its use count. The query
// text is refreshed too, so the stored phrasing follows the latest use.
func (r *RecentSearchRepository) RecordUse(ctx context.Context, hash uint32, queryString string, usedAt time.Time) error {
	query := `
		INSERT INTO recent_searches (hash, query, use_count, last_used_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(hash) DO UPDATE SET
			query = excluded.query,
			use_count = use_count + 1,
			last_used_at = excluded.last_used_at
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, hash, queryString, usedAt)
	if err != nil {
		r.logger.Error("Failed to record search use", zap.Uint32("hash", hash), zap.Error(err))
		return fmt.Errorf("failed to record search use: %w", err)
	}

	return nil
}

// List retrieves recent searches ordered by last use, newest first
func (r *RecentSearchRepository) List(ctx context.Context, limit int) ([]*entity.RecentSearch, error) {
	query := `
		SELECT hash, query, use_count, last_used_at, created_at
		FROM recent_searches
		ORDER BY last_used_at DESC
		LIMIT ?
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list recent searches", zap.Error(err))
		return nil, fmt.Errorf("failed to list recent searches: %w", err)
	}
	defer rows.Close()

	var searches []*entity.RecentSearch
	for rows.Next() {
		var search entity.RecentSearch

		err := rows.Scan(
			&search.Hash,
			&search.Query,
			&search.UseCount,
			&search.LastUsedAt,
			&search.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent search: %w", err)
		}

		searches = append(searches, &search)
	}

	return searches, rows.Err()
}

// DeleteOlderThan removes rows last used before the cutoff. datetime()
// normalizes the stored text against the bound parameter, which may carry
// a zone offset.
func (r *RecentSearchRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM recent_searches WHERE datetime(last_used_at) < datetime(?)`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("Failed to delete old recent searches", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("failed to delete old recent searches: %w", err)
	}

	return result.RowsAffected()
}

// DeleteBeyondCount keeps the most recently used rows up to keep and
// removes the rest
func (r *RecentSearchRepository) DeleteBeyondCount(ctx context.Context, keep int) (int64, error) {
	query := `
		DELETE FROM recent_searches
		WHERE hash NOT IN (
			SELECT hash FROM recent_searches
			ORDER BY last_used_at DESC
			LIMIT ?
		)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, keep)
	if err != nil {
		r.logger.Error("Failed to trim recent searches", zap.Int("keep", keep), zap.Error(err))
		return 0, fmt.Errorf("failed to trim recent searches: %w", err)
	}

	return result.RowsAffected()
}

// getExecutor returns appropriate executor based on context
func (r *RecentSearchRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.RecentSearchRepository = (*RecentSearchRepository)(nil)
