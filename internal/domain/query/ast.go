// Package query implements the search query model: parsing the textual
// search syntax into an expression tree, flattening the tree into filters,
// canonicalizing and hashing queries, and serializing them back to text.
package query

// Operator is one constraint operator of the search syntax.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
)

// Sign returns the operator's textual form in the query grammar.
func (op Operator) Sign() string {
	switch op {
	case OpEq:
		return ":"
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		return ":"
	}
}

// IsEqualityClass reports whether the operator participates in value-list
// merging during serialization. Only eq and neq runs may share one key head.
func (op Operator) IsEqualityClass() bool {
	return op == OpEq || op == OpNeq
}

// Expr is a node of a parsed search tree.
type Expr interface {
	searchExpr()
}

// AndExpr joins two subtrees. Space-separated constraints parse into a
// left-leaning spine of AndExpr nodes, so a left-first depth-first walk
// visits constraints in the order they were typed.
type AndExpr struct {
	Left  Expr
	Right Expr
}

// FilterExpr is a leaf constraint: one key, one operator, and one value per
// element of Values. A comma list on the right-hand side parses into a
// multi-value FilterExpr. The key is whatever the input named; recognition
// against the closed filter-key set happens during flattening, not here.
type FilterExpr struct {
	Key    string
	Op     Operator
	Values []string
}

func (*AndExpr) searchExpr()    {}
func (*FilterExpr) searchExpr() {}
