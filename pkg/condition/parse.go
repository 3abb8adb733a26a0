package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse compiles a compact rule string into a Condition.
//
// Supported syntax:
//   - comparisons: `propertyUsage == "pg"`, `bhk != 2`, `furnished == true`
//   - membership: `commercialKind in ["office", "retail"]`
//   - composition: `a == 1 && (b == 2 || c in [3, 4])`
//
// Literals are strings (single or double quoted), numbers, true, false, and
// null. A bare word on the right-hand side is read as a string. An empty rule
// returns a nil Condition.
func Parse(rule string) (Condition, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	stream := &tokenStream{tokens: tokens}
	c, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("condition: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return c, nil
}

// MustParse is Parse for package-level fixtures; it panics on error.
func MustParse(rule string) Condition {
	c, err := Parse(rule)
	if err != nil {
		panic(err)
	}
	return c
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenIn
	tokenAnd
	tokenOr
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

var punctuation = map[byte]token{
	'(': {kind: tokenLParen, raw: "("},
	')': {kind: tokenRParen, raw: ")"},
	'[': {kind: tokenLBracket, raw: "["},
	']': {kind: tokenRBracket, raw: "]"},
	',': {kind: tokenComma, raw: ","},
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}

	for i < len(input) {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}
		if tok, ok := punctuation[ch]; ok {
			tokens = append(tokens, tok)
			i++
			continue
		}

		switch ch {
		case '=':
			if peek(1) != '=' {
				return nil, errors.New("condition: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case '!':
			if peek(1) != '=' {
				return nil, errors.New("condition: unexpected '!'; use '!='")
			}
			tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
			i += 2
		case '&':
			if peek(1) != '&' {
				return nil, errors.New("condition: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case '|':
			if peek(1) != '|' {
				return nil, errors.New("condition: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case '"', '\'':
			value, next, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = next
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classifyWord(input[start:i]))
		}
	}
	return tokens, nil
}

func readString(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[start+1 : i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("condition: invalid string literal: %w", err)
		}
		return value, i + 1, nil
	}
	return "", 0, errors.New("condition: unterminated string literal")
}

func classifyWord(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokenBool, raw: strings.ToLower(raw)}
	case "null", "nil":
		return token{kind: tokenNull, raw: "null"}
	case "in":
		return token{kind: tokenIn, raw: "in"}
	}
	if looksLikeNumber(raw) {
		return token{kind: tokenNumber, raw: raw}
	}
	return token{kind: tokenIdentifier, raw: raw}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	if isSpace(ch) {
		return true
	}
	switch ch {
	case '(', ')', '[', ']', ',', '!', '=', '&', '|', '"', '\'':
		return true
	}
	return false
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' || ch == '.'
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (Condition, error) {
	first, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	terms := []Condition{first}
	for stream.match(tokenOr) {
		next, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Or{Terms: terms}, nil
}

func parseAnd(stream *tokenStream) (Condition, error) {
	first, err := parsePrimary(stream)
	if err != nil {
		return nil, err
	}
	terms := []Condition{first}
	for stream.match(tokenAnd) {
		next, err := parsePrimary(stream)
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return And{Terms: terms}, nil
}

func parsePrimary(stream *tokenStream) (Condition, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("condition: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("condition: unexpected end of rule")
		}
		return nil, fmt.Errorf("condition: expected field, got %q", stream.tokens[stream.pos].raw)
	}

	switch {
	case stream.match(tokenEq):
		lit, err := stream.literal()
		if err != nil {
			return nil, err
		}
		return FieldEquals{Field: ident.raw, Equals: lit}, nil
	case stream.match(tokenNeq):
		lit, err := stream.literal()
		if err != nil {
			return nil, err
		}
		return FieldNotEquals{Field: ident.raw, NotEquals: lit}, nil
	case stream.match(tokenIn):
		set, err := stream.list()
		if err != nil {
			return nil, err
		}
		return FieldIn{Field: ident.raw, In: set}, nil
	default:
		return nil, fmt.Errorf("condition: expected '==', '!=' or 'in' after %q", ident.raw)
	}
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) list() ([]any, error) {
	if !s.match(tokenLBracket) {
		return nil, errors.New("condition: expected '[' after 'in'")
	}
	set := []any{}
	if s.match(tokenRBracket) {
		return set, nil
	}
	for {
		lit, err := s.literal()
		if err != nil {
			return nil, err
		}
		set = append(set, lit)
		if s.match(tokenComma) {
			continue
		}
		if s.match(tokenRBracket) {
			return set, nil
		}
		return nil, errors.New("condition: expected ',' or ']' in list")
	}
}

func (s *tokenStream) literal() (any, error) {
	if s.pos >= len(s.tokens) {
		return nil, errors.New("condition: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString, tokenIdentifier:
		// Bare words are read as strings to keep hand-written rules forgiving.
		return tok.raw, nil
	case tokenNumber:
		f, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("condition: invalid number literal %q", tok.raw)
		}
		return f, nil
	case tokenBool:
		return tok.raw == "true", nil
	case tokenNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("condition: expected literal, got %q", tok.raw)
	}
}
