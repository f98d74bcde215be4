package query

import (
	"sort"
	"strconv"
	"strings"
)

// BuildSearchQueryJSON parses a raw query string into its canonical
// structured form. Root fields that are absent or name unknown values fall
// back to the defaults, so the result is always well typed. A non-nil error
// means the input is syntactically unusable; callers log and treat the
// typed query as absent.
func BuildSearchQueryJSON(raw string) (*SearchQueryJSON, *ParseError) {
	parsed, perr := Parse(raw)
	if perr != nil {
		return nil, perr
	}

	q := &SearchQueryJSON{
		Type:       DefaultDataType,
		Status:     DefaultStatus,
		SortBy:     DefaultSortBy,
		SortOrder:  DefaultSortOrder,
		PolicyID:   parsed.PolicyID,
		Filters:    parsed.Root,
		InputQuery: raw,
	}
	if t := SearchDataType(strings.ToLower(parsed.Type)); parsed.Type != "" && IsValidDataType(t) {
		q.Type = t
	}
	if s := SearchStatus(strings.ToLower(parsed.Status)); parsed.Status != "" && IsKnownTypeStatus(q.Type, s) {
		q.Status = s
	}
	if parsed.SortBy != "" && IsValidSortColumn(parsed.SortBy) {
		q.SortBy = parsed.SortBy
	}
	if o := SortOrder(strings.ToLower(parsed.SortOrder)); o == SortAsc || o == SortDesc {
		q.SortOrder = o
	}

	q.FlatFilters = Flatten(parsed.Root)
	q.Hash = QueryHash(q)
	q.RecentSearchHash = RecentSearchHash(q)
	return q, nil
}

// QueryHash derives the canonical 32-bit hash of a structured query.
// Structurally equivalent queries hash identically no matter what order
// their constraints appeared in.
func QueryHash(q *SearchQueryJSON) uint32 {
	return hashText(canonicalString(q, true))
}

// RecentSearchHash is the query hash with sort fields excluded, so
// re-sorting the same search does not multiply recent-search entries.
func RecentSearchHash(q *SearchQueryJSON) uint32 {
	return hashText(canonicalString(q, false))
}

// canonicalString builds the deterministic rendering the hashes are
// computed over: policyID when present, then type and status, then (for the
// full hash) the sort fields, then filter keys in lexicographic order with
// each key's constraints sorted by value ascending. Ties on value keep a
// stable order by operator.
func canonicalString(q *SearchQueryJSON, includeSort bool) string {
	parts := make([]string, 0, 5+len(q.FlatFilters))
	if q.PolicyID != "" {
		parts = append(parts, RootKeyPolicyID+":"+q.PolicyID)
	}
	parts = append(parts, RootKeyType+":"+string(q.Type))
	parts = append(parts, RootKeyStatus+":"+string(q.Status))
	if includeSort {
		parts = append(parts, RootKeySortBy+":"+q.SortBy)
		parts = append(parts, RootKeySortOrder+":"+string(q.SortOrder))
	}

	keys := make([]FilterKey, 0, len(q.FlatFilters))
	for k := range q.FlatFilters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		filters := append([]QueryFilter(nil), q.FlatFilters[k]...)
		sort.SliceStable(filters, func(i, j int) bool {
			if c := compareValues(filters[i].Value, filters[j].Value); c != 0 {
				return c < 0
			}
			return filters[i].Operator < filters[j].Operator
		})
		parts = append(parts, BuildFilterString(k, filters))
	}
	return strings.Join(parts, " ")
}

// compareValues orders constraint values ascending, numerically when both
// sides parse as numbers and byte-wise otherwise.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// hashText is a 31-polynomial rolling hash over the runes of s. uint32
// arithmetic wraps, which gives the modulo 2^32 bound; the result is stable
// across runs and platforms.
func hashText(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	return h
}
