package query

import (
	"strings"
	"unicode"
)

// ParsedQuery is the raw outcome of one parse: the filter tree plus
// whatever root fields the input named. Root values are kept verbatim;
// validation and defaulting happen in BuildSearchQueryJSON.
type ParsedQuery struct {
	Root      Expr
	Type      string
	Status    string
	SortBy    string
	SortOrder string
	PolicyID  string
}

// token is one raw field of the input, split on unquoted whitespace.
// Quote characters survive into the text so later stages can tell quoted
// regions apart from bare ones.
type token struct {
	text string
	pos  int
}

type rootAssignment struct {
	key   string
	value string
}

// Parse tokenizes and parses a raw search string. Space-separated
// constraints fold into a left-leaning AndExpr spine in input order; root
// key tokens (type:, status:, sortBy:, sortOrder:, policyID:) assign root
// fields instead of becoming filters, last occurrence winning; bare words
// become keyword constraints. Empty input parses to an empty query.
func Parse(input string) (*ParsedQuery, *ParseError) {
	tokens, perr := tokenize(input)
	if perr != nil {
		return nil, perr
	}

	parsed := &ParsedQuery{}
	var root Expr
	for _, tok := range tokens {
		node, rootKV, perr := parseToken(input, tok)
		if perr != nil {
			return nil, perr
		}
		if rootKV != nil {
			switch rootKV.key {
			case "type":
				parsed.Type = rootKV.value
			case "status":
				parsed.Status = rootKV.value
			case "sortby":
				parsed.SortBy = rootKV.value
			case "sortorder":
				parsed.SortOrder = rootKV.value
			case "policyid":
				parsed.PolicyID = rootKV.value
			}
			continue
		}
		if root == nil {
			root = node
		} else {
			root = &AndExpr{Left: root, Right: node}
		}
	}
	parsed.Root = root
	return parsed, nil
}

// tokenize splits the input on unquoted whitespace. Double quotes open and
// close verbatim regions that may contain any character; an unclosed quote
// is a parse error at its opening offset.
func tokenize(input string) ([]token, *ParseError) {
	var tokens []token
	var b strings.Builder
	start := -1
	inQuote := false
	quotePos := 0

	for i, r := range input {
		switch {
		case r == '"':
			if start == -1 {
				start = i
			}
			if !inQuote {
				quotePos = i
			}
			inQuote = !inQuote
			b.WriteRune(r)
		case !inQuote && unicode.IsSpace(r):
			if start != -1 {
				tokens = append(tokens, token{text: b.String(), pos: start})
				b.Reset()
				start = -1
			}
		default:
			if start == -1 {
				start = i
			}
			b.WriteRune(r)
		}
	}
	if inQuote {
		return nil, newParseError(input, quotePos, "unterminated quote")
	}
	if start != -1 {
		tokens = append(tokens, token{text: b.String(), pos: start})
	}
	return tokens, nil
}

// parseToken turns one token into a filter node or a root assignment.
// Tokens without an operator are keyword free text.
func parseToken(input string, tok token) (Expr, *rootAssignment, *ParseError) {
	key, op, rest, found := splitOperator(tok.text)
	if !found {
		return &FilterExpr{
			Key:    string(KeyKeyword),
			Op:     OpEq,
			Values: []string{stripQuotes(tok.text)},
		}, nil, nil
	}
	if key == "" {
		return nil, nil, newParseError(input, tok.pos, "missing key before operator")
	}

	values := splitValues(rest)
	if len(values) == 0 {
		return nil, nil, newParseError(input, tok.pos, "missing value after operator")
	}

	lower := strings.ToLower(key)
	if op == OpEq && isRootKey(lower) {
		return nil, &rootAssignment{key: lower, value: values[0]}, nil
	}
	return &FilterExpr{Key: key, Op: op, Values: values}, nil, nil
}

// splitOperator locates the first unquoted operator in a token. Operators
// are ASCII, so a byte scan is safe over UTF-8 text.
func splitOperator(text string) (key string, op Operator, rest string, found bool) {
	inQuote := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		switch c {
		case ':':
			return text[:i], OpEq, text[i+1:], true
		case '!':
			if i+1 < len(text) && text[i+1] == '=' {
				return text[:i], OpNeq, text[i+2:], true
			}
		case '<':
			if i+1 < len(text) && text[i+1] == '=' {
				return text[:i], OpLte, text[i+2:], true
			}
			return text[:i], OpLt, text[i+1:], true
		case '>':
			if i+1 < len(text) && text[i+1] == '=' {
				return text[:i], OpGte, text[i+2:], true
			}
			return text[:i], OpGt, text[i+1:], true
		}
	}
	return "", "", "", false
}

// splitValues splits a right-hand side on unquoted commas and strips the
// quotes themselves. Empty elements are dropped.
func splitValues(rest string) []string {
	var values []string
	var b strings.Builder
	inQuote := false

	flush := func() {
		if b.Len() > 0 {
			values = append(values, b.String())
			b.Reset()
		}
	}
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == ',' && !inQuote:
			flush()
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return values
}

// stripQuotes removes the quote characters from a token, keeping the quoted
// content. Quotes are balanced within a token because the tokenizer keeps
// quoted regions whole.
func stripQuotes(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
