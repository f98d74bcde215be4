package entity

import "time"

// SavedSearch is a named query a user chose to keep. The hash is the
// canonical query hash, so renaming a saved search never changes which
// query it points at.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	Hash      uint32    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecentSearch is one entry of the recent search history, keyed by the
// sort-insensitive variant of the query hash so re-sorting the same search
// updates its entry instead of adding another.
type RecentSearch struct {
	Hash       uint32    `json:"hash"`
	Query      string    `json:"query"`
	UseCount   int       `json:"use_count"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// SearchSnapshot is one ingested results payload, kept verbatim and keyed
// by the canonical hash of the query that produced it.
type SearchSnapshot struct {
	ID        int64     `json:"id"`
	Hash      uint32    `json:"hash"`
	Query     string    `json:"query"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
