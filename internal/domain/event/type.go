package event

// Type identifies the type of domain event
type Type string

const (
	TypeSearchExecuted     Type = "search.executed"
	TypeSnapshotIngested   Type = "snapshot.ingested"
	TypeSnapshotPruned     Type = "snapshot.pruned"
	TypeSavedSearchCreated Type = "saved_search.created"
	TypeSavedSearchDeleted Type = "saved_search.deleted"
	TypeRecentSearchNoted  Type = "recent_search.noted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeSearchExecuted,
		TypeSnapshotIngested,
		TypeSnapshotPruned,
		TypeSavedSearchCreated,
		TypeSavedSearchDeleted,
		TypeRecentSearchNoted:
		return true
	default:
		return false
	}
}
