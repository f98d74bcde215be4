package query

import "fmt"

// ParseError describes why a raw search string could not be parsed. It is
// returned as a value, never panicked: parsing runs on every keystroke of
// interactive query editing, so callers treat it as "query unusable" and
// fall back to a prior known-good query.
type ParseError struct {
	Input    string
	Position int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse query %q at offset %d: %s", e.Input, e.Position, e.Reason)
}

func newParseError(input string, pos int, reason string) *ParseError {
	return &ParseError{Input: input, Position: pos, Reason: reason}
}
