package port

import (
	"context"
	"time"

	"github.com/ledgerline/expense-search/internal/domain/entity"
)

// SnapshotRepository defines persistence operations for SearchSnapshot.
// Snapshots are append-only; the newest row per hash is the authoritative
// result set for that query.
type SnapshotRepository interface {
	// Save inserts a new snapshot row
	Save(ctx context.Context, snapshot *entity.SearchSnapshot) error

	// GetLatestByHash retrieves the most recent snapshot for a query hash
	GetLatestByHash(ctx context.Context, hash uint32) (*entity.SearchSnapshot, error)

	// DeleteOlderThan removes snapshots created before the cutoff and
	// returns the number of rows deleted
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteSuperseded removes all but the newest snapshot per hash and
	// returns the number of rows deleted
	DeleteSuperseded(ctx context.Context) (int64, error)
}

// SavedSearchRepository defines persistence operations for SavedSearch
type SavedSearchRepository interface {
	Create(ctx context.Context, search *entity.SavedSearch) error
	GetByID(ctx context.Context, id string) (*entity.SavedSearch, error)
	GetByName(ctx context.Context, name string) (*entity.SavedSearch, error)
	List(ctx context.Context) ([]*entity.SavedSearch, error)
	Update(ctx context.Context, search *entity.SavedSearch) error
	Delete(ctx context.Context, id string) error
}

// RecentSearchRepository defines persistence operations for RecentSearch
type RecentSearchRepository interface {
	// RecordUse inserts the row for (hash, query) or bumps its use count
	// and last-used timestamp when it already exists
	RecordUse(ctx context.Context, hash uint32, queryString string, usedAt time.Time) error

	// List retrieves recent searches ordered by last use, newest first
	List(ctx context.Context, limit int) ([]*entity.RecentSearch, error)

	// DeleteOlderThan removes rows last used before the cutoff and returns
	// the number of rows deleted
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteBeyondCount keeps the most recently used rows up to keep and
	// removes the rest, returning the number of rows deleted
	DeleteBeyondCount(ctx context.Context, keep int) (int64, error)
}

// ReferenceDataRepository loads the lookup collections the filter form
// validates values against
type ReferenceDataRepository interface {
	// Load reads the full reference data set
	Load(ctx context.Context) (*entity.ReferenceData, error)

	// UpsertPersonalDetails merges account identities discovered in
	// ingested snapshots into the personal-details directory
	UpsertPersonalDetails(ctx context.Context, details map[string]entity.PersonalDetails) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
