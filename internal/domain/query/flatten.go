package query

// Flatten walks a parsed tree depth-first, left child before right, and
// collects constraints whose key names a recognized filter. Unrecognized
// keys are dropped here, which is what makes parse-then-flatten a
// normalization step rather than a plain traversal. A nil tree flattens to
// an empty map.
func Flatten(root Expr) QueryFilters {
	acc := make(QueryFilters)
	flattenInto(root, acc)
	return acc
}

func flattenInto(node Expr, acc QueryFilters) {
	switch n := node.(type) {
	case *AndExpr:
		flattenInto(n.Left, acc)
		flattenInto(n.Right, acc)
	case *FilterExpr:
		key, ok := LookupFilterKey(n.Key)
		if !ok {
			return
		}
		for _, v := range n.Values {
			acc[key] = append(acc[key], QueryFilter{Operator: n.Op, Value: v})
		}
	}
}
