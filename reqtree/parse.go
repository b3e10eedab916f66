package reqtree

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrUnbalanced reports a '{' without a matching '}' or the reverse.
	ErrUnbalanced = errors.New("reqtree: unbalanced braces")
	// ErrUnexpectedChar reports a character the grammar does not allow.
	ErrUnexpectedChar = errors.New("reqtree: unexpected character")
	// ErrExpectedIdent reports '{' or ':' that does not follow a field name.
	ErrExpectedIdent = errors.New("reqtree: expected field name")
)

// ParseError describes a failure to tokenize requirement text. Offset is the
// byte offset within the comment- and whitespace-stripped input.
type ParseError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure at offset %d: %s", e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

var commentRe = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*`)

// StripComments removes line (// ...) and block (/* ... */) comments.
func StripComments(s string) string { return commentRe.ReplaceAllString(s, "") }

// StripWhitespace removes every white-space character from s.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Parse turns requirement text into a Tree.
func Parse(s string) (Tree, error) {
	return Tokenize(StripWhitespace(StripComments(s)))
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Tree {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Tokenize scans comment- and whitespace-free text into a Tree. Identifiers
// are tracked as a start/length window over s.
func Tokenize(s string) (Tree, error) {
	var (
		stack  []Tree
		cur    = Tree{}
		start  = -1
		length = 0
		colon  = false // ':' seen after the current identifier
	)
	key := func() string { return s[start : start+length] }
	reset := func() { start, length, colon = -1, 0, false }
	fail := func(i int, err error, format string, a ...any) (Tree, error) {
		return nil, &ParseError{Offset: i, Msg: fmt.Sprintf(format, a...), Err: err}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if length == 0 {
				return fail(i, ErrExpectedIdent, "'{' must follow a field name")
			}
			child := Tree{}
			cur[key()] = child
			stack = append(stack, cur)
			cur = child
			reset()
		case '}':
			if colon {
				return fail(i, ErrUnexpectedChar, "':' must be followed by '{'")
			}
			if length > 0 {
				cur[key()] = nil
				reset()
			}
			if len(stack) == 0 {
				return fail(i, ErrUnbalanced, "unexpected '}'")
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case ',':
			if colon {
				return fail(i, ErrUnexpectedChar, "':' must be followed by '{'")
			}
			if length == 0 {
				// comma after a nested block, or a repeated comma
				continue
			}
			cur[key()] = nil
			reset()
		case ':':
			if length == 0 || colon {
				return fail(i, ErrExpectedIdent, "':' must follow a field name")
			}
			colon = true
		default:
			if !isIdentByte(c) {
				return fail(i, ErrUnexpectedChar, "unexpected character %q", rune(c))
			}
			if colon {
				return fail(i, ErrUnexpectedChar, "':' must be followed by '{'")
			}
			if start == -1 {
				start = i
			}
			length++
		}
	}

	if colon {
		return fail(len(s), ErrUnexpectedChar, "':' must be followed by '{'")
	}
	// lingering identifier without a trailing comma
	if length > 0 {
		cur[key()] = nil
	}
	if len(stack) > 0 {
		return fail(len(s), ErrUnbalanced, "missing closing bracket")
	}
	return cur, nil
}
