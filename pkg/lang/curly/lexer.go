package curly

import (
	"fmt"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/syntax"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokPunct:
		return "punctuation"
	default:
		return "unknown"
	}
}

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func (t token) rng() syntax.Range { return syntax.Range{Start: t.start, End: t.end} }

// punctuation lists operators longest first so that "++" wins over "+".
//
//nolint:gochecknoglobals // Read-only operator table
var punctuation = []string{
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"(", ")", "{", "}", ",", ";", "=", "<", ">", "+", "-", "*", "/", "%", "!",
}

// lexer splits source into tokens and collects comments as trivia.
type lexer struct {
	src      []byte
	offset   int
	comments []syntax.Range
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// tokenize returns all tokens of src followed by a tokEOF token.
func tokenize(src []byte) ([]token, []syntax.Range, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, l.comments, nil
		}
	}
}

func (l *lexer) errorf(offset int, format string, args ...any) error {
	return &posError{offset: offset, msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}
	start := l.offset
	if start >= len(l.src) {
		return token{kind: tokEOF, start: start, end: start}, nil
	}

	c := l.src[start]
	switch {
	case isLetter(c):
		for l.offset < len(l.src) && (isLetter(l.src[l.offset]) || isDigit(l.src[l.offset])) {
			l.offset++
		}
		return l.token(tokIdent, start), nil

	case isDigit(c):
		for l.offset < len(l.src) && (isDigit(l.src[l.offset]) || l.src[l.offset] == '.') {
			l.offset++
		}
		return l.token(tokNumber, start), nil

	case c == '"':
		l.offset++
		for l.offset < len(l.src) {
			switch l.src[l.offset] {
			case '\\':
				l.offset += 2
				continue
			case '\n':
				return token{}, l.errorf(start, "unterminated string")
			case '"':
				l.offset++
				return l.token(tokString, start), nil
			}
			l.offset++
		}
		return token{}, l.errorf(start, "unterminated string")
	}

	rest := string(l.src[start:min(start+2, len(l.src))])
	for _, p := range punctuation {
		if strings.HasPrefix(rest, p) {
			l.offset += len(p)
			return l.token(tokPunct, start), nil
		}
	}
	return token{}, l.errorf(start, "unexpected character %q", c)
}

func (l *lexer) token(kind tokenKind, start int) token {
	return token{kind: kind, text: string(l.src[start:l.offset]), start: start, end: l.offset}
}

// skipTrivia skips whitespace and records comments.
func (l *lexer) skipTrivia() error {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		switch {
		case isSpace(c):
			l.offset++

		case c == '/' && l.peek(1) == '/':
			start := l.offset
			for l.offset < len(l.src) && l.src[l.offset] != '\n' {
				l.offset++
			}
			l.comments = append(l.comments, syntax.Range{Start: start, End: l.offset})

		case c == '/' && l.peek(1) == '*':
			start := l.offset
			end := strings.Index(string(l.src[start+2:]), "*/")
			if end < 0 {
				return l.errorf(start, "unterminated block comment")
			}
			l.offset = start + 2 + end + 2
			l.comments = append(l.comments, syntax.Range{Start: start, End: l.offset})

		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) peek(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}
