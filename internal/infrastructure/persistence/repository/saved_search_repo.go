package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerline/expense-search/internal/application/port"
	"github.com/ledgerline/expense-search/internal/domain/entity"
	"github.com/ledgerline/expense-search/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// SavedSearchRepository implements port.SavedSearchRepository
type SavedSearchRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSavedSearchRepository creates a new saved search repository
func NewSavedSearchRepository(db *sql.DB, logger *zap.Logger) port.SavedSearchRepository {
	return &SavedSearchRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new saved search
func (r *SavedSearchRepository) Create(ctx context.Context, search *entity.SavedSearch) error {
	query := `
		INSERT INTO saved_searches (id, name, query, hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		search.ID,
		search.Name,
		search.Query,
		search.Hash,
		search.CreatedAt,
		search.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create saved search", zap.String("name", search.Name), zap.Error(err))
		return fmt.Errorf("failed to create saved search: %w", err)
	}

	return nil
}

// GetByID retrieves a saved search by ID
func (r *SavedSearchRepository) GetByID(ctx context.Context, id string) (*entity.SavedSearch, error) {
	query := `
		SELECT id, name, query, hash, created_at, updated_at
		FROM saved_searches
		WHERE id = ?
	`

	return r.scanOne(r.getExecutor(ctx).QueryRowContext(ctx, query, id), "id", id)
}

// GetByName retrieves a saved search by its unique name
func (r *SavedSearchRepository) GetByName(ctx context.Context, name string) (*entity.SavedSearch, error) {
	query := `
		SELECT id, name, query, hash, created_at, updated_at
		FROM saved_searches
		WHERE name = ?
	`

	return r.scanOne(r.getExecutor(ctx).QueryRowContext(ctx, query, name), "name", name)
}

// List retrieves all saved searches, most recently updated first
func (r *SavedSearchRepository) List(ctx context.Context) ([]*entity.SavedSearch, error) {
	query := `
		SELECT id, name, query, hash, created_at, updated_at
		FROM saved_searches
		ORDER BY updated_at DESC, name ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list saved searches", zap.Error(err))
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	defer rows.Close()

	var searches []*entity.SavedSearch
	for rows.Next() {
		var search entity.SavedSearch

		err := rows.Scan(
			&search.ID,
			&search.Name,
			&search.Query,
			&search.Hash,
			&search.CreatedAt,
			&search.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved search: %w", err)
		}

		searches = append(searches, &search)
	}

	return searches, rows.Err()
}

// Update rewrites the name, query and hash of a saved search
func (r *SavedSearchRepository) Update(ctx context.Context, search *entity.SavedSearch) error {
	query := `
		UPDATE saved_searches
		SET name = ?, query = ?, hash = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		search.Name,
		search.Query,
		search.Hash,
		search.UpdatedAt,
		search.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update saved search", zap.String("id", search.ID), zap.Error(err))
		return fmt.Errorf("failed to update saved search: %w", err)
	}

	return nil
}

// Delete removes a saved search by ID
func (r *SavedSearchRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM saved_searches WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete saved search", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete saved search: %w", err)
	}

	return nil
}

func (r *SavedSearchRepository) scanOne(row *sql.Row, field, value string) (*entity.SavedSearch, error) {
	var search entity.SavedSearch

	err := row.Scan(
		&search.ID,
		&search.Name,
		&search.Query,
		&search.Hash,
		&search.CreatedAt,
		&search.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get saved search", zap.String(field, value), zap.Error(err))
		return nil, fmt.Errorf("failed to get saved search: %w", err)
	}

	return &search, nil
}

// getExecutor returns appropriate executor based on context
func (r *SavedSearchRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.SavedSearchRepository = (*SavedSearchRepository)(nil)
