package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "plain number unchanged", value: "50", want: "50"},
		{name: "currency sign forces quotes", value: "50$", want: `"50$"`},
		{name: "space forces quotes", value: "Coffee Shop", want: `"Coffee Shop"`},
		{name: "comma is whitelisted", value: "a,b", want: "a,b"},
		{name: "quote character is whitelisted", value: `say"hi`, want: `say"hi`},
		{name: "date stays bare", value: "2024-01-15", want: "2024-01-15"},
		{name: "email stays bare", value: "sam@corp.example", want: "sam@corp.example"},
		{name: "percent forces quotes", value: "tax@5%", want: `"tax@5%"`},
		{name: "non-latin forces quotes", value: "差旅", want: `"差旅"`},
		{name: "empty stays empty", value: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeValue(tt.value))
		})
	}
}

func TestBuildFilterString(t *testing.T) {
	tests := []struct {
		name    string
		key     FilterKey
		filters []QueryFilter
		want    string
	}{
		{
			name: "equality run merges into a comma list",
			key:  KeyCategory,
			filters: []QueryFilter{
				{Operator: OpEq, Value: "A"},
				{Operator: OpEq, Value: "B"},
			},
			want: "category:A,B",
		},
		{
			name: "keyword run joins with spaces",
			key:  KeyKeyword,
			filters: []QueryFilter{
				{Operator: OpEq, Value: "team"},
				{Operator: OpEq, Value: "dinner"},
			},
			want: "keyword:team dinner",
		},
		{
			name: "operator change starts a new segment",
			key:  KeyMerchant,
			filters: []QueryFilter{
				{Operator: OpEq, Value: "A"},
				{Operator: OpEq, Value: "B"},
				{Operator: OpNeq, Value: "C"},
				{Operator: OpNeq, Value: "D"},
				{Operator: OpEq, Value: "E"},
			},
			want: "merchant:A,B merchant!=C,D merchant:E",
		},
		{
			name: "range operators never merge",
			key:  KeyDate,
			filters: []QueryFilter{
				{Operator: OpLt, Value: "2024-02-01"},
				{Operator: OpGt, Value: "2024-01-01"},
			},
			want: "date<2024-02-01 date>2024-01-01",
		},
		{
			name: "amount range with inclusive bounds",
			key:  KeyAmount,
			filters: []QueryFilter{
				{Operator: OpGte, Value: "50"},
				{Operator: OpLte, Value: "100"},
			},
			want: "amount>=50 amount<=100",
		},
		{
			name: "values are sanitized",
			key:  KeyMerchant,
			filters: []QueryFilter{
				{Operator: OpEq, Value: "Coffee Shop"},
				{Operator: OpEq, Value: "Acme"},
			},
			want: `merchant:"Coffee Shop",Acme`,
		},
		{
			name: "keyword value with a comma is quoted",
			key:  KeyKeyword,
			filters: []QueryFilter{
				{Operator: OpEq, Value: "a,b"},
			},
			want: `keyword:"a,b"`,
		},
		{
			name: "comma-delimited key keeps comma values bare",
			key:  KeyCategory,
			filters: []QueryFilter{
				{Operator: OpEq, Value: "a,b"},
			},
			want: "category:a,b",
		},
		{
			name:    "empty filter list renders empty",
			key:     KeyTag,
			filters: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilterString(tt.key, tt.filters))
		})
	}
}

func TestToQueryString_NilAndDefault(t *testing.T) {
	want := "type:expense status:all sortBy:date sortOrder:desc"
	assert.Equal(t, want, ToQueryString(nil))
	assert.Equal(t, want, ToQueryString(mustBuild(t, "")))
}

func TestToQueryString_RootOrderIsFixed(t *testing.T) {
	q := mustBuild(t, "sortOrder:asc policyID:pol_7 status:paid sortBy:total type:invoice")
	assert.Equal(t, "type:invoice status:paid policyID:pol_7 sortBy:total sortOrder:asc", ToQueryString(q))
}

func TestToQueryString_FilterKeysFollowDeclaredOrder(t *testing.T) {
	// Input order is scrambled; output follows the key enumeration order,
	// with values inside each key kept in their flattened order.
	q := mustBuild(t, "tag:urgent merchant:Acme amount>50 category:B,A")
	want := "type:expense status:all sortBy:date sortOrder:desc amount>50 category:B,A tag:urgent merchant:Acme"
	assert.Equal(t, want, ToQueryString(q))
}

func TestToQueryString_FixedPoint(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bare defaults", input: ""},
		{name: "single keyword", input: "coffee"},
		{name: "quoted keyword", input: `"team dinner"`},
		{name: "value list", input: "category:A,B"},
		{name: "scrambled roots and filters", input: "tag:urgent type:invoice merchant:Acme status:paid"},
		{name: "ranges", input: "amount>=50 amount<100 date<2024-02-01 date>2024-01-01"},
		{name: "mixed operators on one key", input: "merchant:A,B merchant!=C"},
		{name: "quoted values", input: `merchant:"Coffee Shop" description:"late night"`},
		{name: "unknown keys dropped by normalization", input: "merchant:Acme nonsense:x"},
		{name: "policy scope", input: "policyID:pol_7 category:Travel"},
		{name: "quoted comma in a keyword value", input: `keyword:"a,b"`},
		{name: "quoted comma in a list value", input: `category:"a,b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := ToQueryString(mustBuild(t, tt.input))
			twice := ToQueryString(mustBuild(t, once))
			assert.Equal(t, once, twice)

			// A third pass cannot drift either.
			assert.Equal(t, twice, ToQueryString(mustBuild(t, twice)))
		})
	}
}

func TestToQueryString_HashStableAcrossRoundTrip(t *testing.T) {
	q := mustBuild(t, "merchant:Acme tag:urgent amount>50")
	round := mustBuild(t, ToQueryString(q))
	require.NotNil(t, round)
	assert.Equal(t, q.Hash, round.Hash)
	assert.Equal(t, q.RecentSearchHash, round.RecentSearchHash)
}
