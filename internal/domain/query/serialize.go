package query

import (
	"regexp"
	"strings"
)

// valueNeedsQuoting matches any character outside the serialization
// whitelist. A value containing one is wrapped in double quotes verbatim;
// there is no internal escaping.
var valueNeedsQuoting = regexp.MustCompile(`[^A-Za-z0-9_@./#&+\-\\';,"]`)

// SanitizeValue wraps v in double quotes when it contains characters the
// query grammar cannot carry bare, such as spaces.
func SanitizeValue(v string) string {
	if valueNeedsQuoting.MatchString(v) {
		return `"` + v + `"`
	}
	return v
}

// delimiterFor returns the separator used when consecutive same-class
// constraints merge after a single key head. Keyword lists join with
// spaces, every other key with commas.
func delimiterFor(key FilterKey) string {
	if key == KeyKeyword {
		return " "
	}
	return ","
}

// sanitizeForKey renders one value under its key. On top of the global
// whitelist, a comma-bearing value under a space-delimited key must be
// quoted: bare it would reparse as a comma list, splitting one value into
// two and breaking the serialize-parse fixed point. Under comma-delimited
// keys the reparse merges the list back, so bare commas stay legal there.
func sanitizeForKey(key FilterKey, v string) string {
	if delimiterFor(key) == " " && strings.Contains(v, ",") {
		return `"` + v + `"`
	}
	return SanitizeValue(v)
}

// BuildFilterString renders one key's ordered constraints. Runs of the same
// equality-class operator merge into one delimited value list after the key
// head; range operators and operator changes each open a fresh
// key<sign>value segment, space separated.
func BuildFilterString(key FilterKey, filters []QueryFilter) string {
	delim := delimiterFor(key)
	var b strings.Builder
	for i, f := range filters {
		if i > 0 && f.Operator == filters[i-1].Operator && f.Operator.IsEqualityClass() {
			b.WriteString(delim)
			b.WriteString(sanitizeForKey(key, f.Value))
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(string(key))
		b.WriteString(f.Operator.Sign())
		b.WriteString(sanitizeForKey(key, f.Value))
	}
	return b.String()
}

// ToQueryString serializes a structured query back into the textual
// grammar. Root fields render first in fixed order, skipping empty ones,
// then filter keys in their declared order. Serializing the result of
// BuildSearchQueryJSON and parsing it again yields the same string.
func ToQueryString(q *SearchQueryJSON) string {
	if q == nil {
		q, _ = BuildSearchQueryJSON("")
	}

	parts := make([]string, 0, 5+len(q.FlatFilters))
	if q.Type != "" {
		parts = append(parts, RootKeyType+":"+string(q.Type))
	}
	if q.Status != "" {
		parts = append(parts, RootKeyStatus+":"+string(q.Status))
	}
	if q.PolicyID != "" {
		parts = append(parts, RootKeyPolicyID+":"+SanitizeValue(q.PolicyID))
	}
	if q.SortBy != "" {
		parts = append(parts, RootKeySortBy+":"+q.SortBy)
	}
	if q.SortOrder != "" {
		parts = append(parts, RootKeySortOrder+":"+string(q.SortOrder))
	}
	for _, key := range filterKeyOrder {
		filters := q.FlatFilters[key]
		if len(filters) == 0 {
			continue
		}
		parts = append(parts, BuildFilterString(key, filters))
	}
	return strings.Join(parts, " ")
}
