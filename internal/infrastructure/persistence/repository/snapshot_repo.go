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

// SnapshotRepository implements port.SnapshotRepository
type SnapshotRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, logger *zap.Logger) port.SnapshotRepository {
	return &SnapshotRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a new snapshot row
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *entity.SearchSnapshot) error {
	query := `
		INSERT INTO search_snapshots (hash, query, payload)
		VALUES (?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		snapshot.Hash,
		snapshot.Query,
		snapshot.Payload,
	)
	if err != nil {
		r.logger.Error("Failed to save snapshot", zap.Uint32("hash", snapshot.Hash), zap.Error(err))
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	snapshot.ID = id
	return nil
}

// GetLatestByHash retrieves the most recent snapshot for a query hash.
// Rows inserted within the same second tie on created_at, so the row id
// breaks the tie.
func (r *SnapshotRepository) GetLatestByHash(ctx context.Context, hash uint32) (*entity.SearchSnapshot, error) {
	query := `
		SELECT id, hash, query, payload, created_at
		FROM search_snapshots
		WHERE hash = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var snapshot entity.SearchSnapshot

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, hash).Scan(
		&snapshot.ID,
		&snapshot.Hash,
		&snapshot.Query,
		&snapshot.Payload,
		&snapshot.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get snapshot by hash", zap.Uint32("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &snapshot, nil
}

// DeleteOlderThan removes snapshots created before the cutoff. datetime()
// normalizes the stored text against the bound parameter, which may carry
// a zone offset.
func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM search_snapshots WHERE datetime(created_at) < datetime(?)`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("Failed to delete expired snapshots", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("failed to delete expired snapshots: %w", err)
	}

	return result.RowsAffected()
}

// DeleteSuperseded removes every snapshot that a newer row for the same
// hash has replaced
func (r *SnapshotRepository) DeleteSuperseded(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM search_snapshots
		WHERE id NOT IN (
			SELECT MAX(id) FROM search_snapshots GROUP BY hash
		)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to delete superseded snapshots", zap.Error(err))
		return 0, fmt.Errorf("failed to delete superseded snapshots: %w", err)
	}

	return result.RowsAffected()
}

// getExecutor returns appropriate executor based on context
func (r *SnapshotRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Verify interface compliance
var _ port.SnapshotRepository = (*SnapshotRepository)(nil)
