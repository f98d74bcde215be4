package query

import "strings"

// FilterKey identifies one recognized filter field of the search syntax.
type FilterKey string

const (
	KeyAmount      FilterKey = "amount"
	KeyDate        FilterKey = "date"
	KeyCategory    FilterKey = "category"
	KeyTag         FilterKey = "tag"
	KeyMerchant    FilterKey = "merchant"
	KeyDescription FilterKey = "description"
	KeyReportID    FilterKey = "reportID"
	KeyFrom        FilterKey = "from"
	KeyTo          FilterKey = "to"
	KeyIn          FilterKey = "in"
	KeyCardID      FilterKey = "cardID"
	KeyTaxRate     FilterKey = "taxRate"
	KeyCurrency    FilterKey = "currency"
	KeyKeyword     FilterKey = "keyword"
	KeyExpenseType FilterKey = "expenseType"
)

// filterKeyOrder fixes the order of filter segments in serialized query
// strings. Serialization iterates this table, never a map.
var filterKeyOrder = []FilterKey{
	KeyAmount,
	KeyDate,
	KeyCategory,
	KeyTag,
	KeyMerchant,
	KeyDescription,
	KeyReportID,
	KeyFrom,
	KeyTo,
	KeyIn,
	KeyCardID,
	KeyTaxRate,
	KeyCurrency,
	KeyKeyword,
	KeyExpenseType,
}

// filterKeyByName maps lowercased key names to their canonical FilterKey.
var filterKeyByName = func() map[string]FilterKey {
	m := make(map[string]FilterKey, len(filterKeyOrder))
	for _, k := range filterKeyOrder {
		m[strings.ToLower(string(k))] = k
	}
	return m
}()

// LookupFilterKey resolves a raw key name (case-insensitive) to its
// canonical FilterKey.
func LookupFilterKey(name string) (FilterKey, bool) {
	k, ok := filterKeyByName[strings.ToLower(name)]
	return k, ok
}

// FilterKeys returns the filter keys in their fixed serialization order.
func FilterKeys() []FilterKey {
	keys := make([]FilterKey, len(filterKeyOrder))
	copy(keys, filterKeyOrder)
	return keys
}

// Root keys of the query syntax. Output order is fixed: type, status,
// policyID, sortBy, sortOrder. The hash canonicalization uses its own order
// (policyID first); see canonical.go.
const (
	RootKeyType      = "type"
	RootKeyStatus    = "status"
	RootKeyPolicyID  = "policyID"
	RootKeySortBy    = "sortBy"
	RootKeySortOrder = "sortOrder"
)

// isRootKey reports whether a lowercased token key names a root field.
func isRootKey(lower string) bool {
	switch lower {
	case "type", "status", "policyid", "sortby", "sortorder":
		return true
	default:
		return false
	}
}
