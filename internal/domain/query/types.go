package query

// SearchDataType selects which entity collection a search runs against.
type SearchDataType string

const (
	DataTypeExpense SearchDataType = "expense"
	DataTypeInvoice SearchDataType = "invoice"
	DataTypeTrip    SearchDataType = "trip"
	DataTypeChat    SearchDataType = "chat"
)

// SearchStatus narrows a search to one lifecycle slice of its data type.
type SearchStatus string

const (
	StatusAll         SearchStatus = "all"
	StatusDrafts      SearchStatus = "drafts"
	StatusOutstanding SearchStatus = "outstanding"
	StatusApproved    SearchStatus = "approved"
	StatusPaid        SearchStatus = "paid"
	StatusCurrent     SearchStatus = "current"
	StatusPast        SearchStatus = "past"
	StatusUnread      SearchStatus = "unread"
	StatusSent        SearchStatus = "sent"
	StatusAttachments SearchStatus = "attachments"
	StatusLinks       SearchStatus = "links"
	StatusPinned      SearchStatus = "pinned"
)

// SortOrder is the direction of a sorted result set.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Result table column identifiers, also the legal sortBy values.
const (
	ColumnReceipt     = "receipt"
	ColumnType        = "type"
	ColumnDate        = "date"
	ColumnMerchant    = "merchant"
	ColumnDescription = "description"
	ColumnFrom        = "from"
	ColumnTo          = "to"
	ColumnCategory    = "category"
	ColumnTag         = "tag"
	ColumnTaxAmount   = "taxAmount"
	ColumnTotal       = "total"
	ColumnAction      = "action"
)

// Defaults applied when a query names no type, status or sort.
const (
	DefaultDataType  = DataTypeExpense
	DefaultStatus    = StatusAll
	DefaultSortBy    = ColumnDate
	DefaultSortOrder = SortDesc
)

// statusesByType fixes the known type/status combinations. Order within a
// type matters only for UI enumeration; membership is what validation uses.
var statusesByType = map[SearchDataType][]SearchStatus{
	DataTypeExpense: {StatusAll, StatusDrafts, StatusOutstanding, StatusApproved, StatusPaid},
	DataTypeInvoice: {StatusAll, StatusOutstanding, StatusPaid},
	DataTypeTrip:    {StatusAll, StatusCurrent, StatusPast},
	DataTypeChat:    {StatusAll, StatusUnread, StatusSent, StatusAttachments, StatusLinks, StatusPinned},
}

// sortableColumns is the legal sortBy value set.
var sortableColumns = map[string]struct{}{
	ColumnReceipt:     {},
	ColumnType:        {},
	ColumnDate:        {},
	ColumnMerchant:    {},
	ColumnDescription: {},
	ColumnFrom:        {},
	ColumnTo:          {},
	ColumnCategory:    {},
	ColumnTag:         {},
	ColumnTaxAmount:   {},
	ColumnTotal:       {},
	ColumnAction:      {},
}

// IsValidDataType reports whether t names a known search data type.
func IsValidDataType(t SearchDataType) bool {
	_, ok := statusesByType[t]
	return ok
}

// IsKnownTypeStatus reports whether the type/status pair is one of the
// known combinations.
func IsKnownTypeStatus(t SearchDataType, s SearchStatus) bool {
	for _, known := range statusesByType[t] {
		if known == s {
			return true
		}
	}
	return false
}

// IsValidSortColumn reports whether c is a legal sortBy value.
func IsValidSortColumn(c string) bool {
	_, ok := sortableColumns[c]
	return ok
}

// QueryFilter is one flattened constraint: an operator and its value.
// Values stay textual exactly as parsed; numeric interpretation happens
// where a consumer needs it.
type QueryFilter struct {
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// QueryFilters maps each recognized filter key to its constraints in
// encounter order. Iteration for serialization and hashing is always driven
// by explicit key tables, never by map order.
type QueryFilters map[FilterKey][]QueryFilter

// SearchQueryJSON is the canonical structured form of one search query.
// Two structurally equivalent queries (same filters in any input order)
// carry the same Hash; the hash survives process restarts.
type SearchQueryJSON struct {
	Type             SearchDataType `json:"type"`
	Status           SearchStatus   `json:"status"`
	SortBy           string         `json:"sortBy"`
	SortOrder        SortOrder      `json:"sortOrder"`
	PolicyID         string         `json:"policyID,omitempty"`
	Filters          Expr           `json:"-"`
	FlatFilters      QueryFilters   `json:"flatFilters,omitempty"`
	InputQuery       string         `json:"inputQuery"`
	Hash             uint32         `json:"hash"`
	RecentSearchHash uint32         `json:"recentSearchHash"`
}
