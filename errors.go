package goshape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/goshape/reqtree"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType = "invalid_type"
	CodeRequired    = "required"
	CodeInvalidEnum = "invalid_enum"
	// CodeDuplicateKey reports a JSON object key that occurs more than once.
	CodeDuplicateKey = "duplicate_key"
	// Declaration-time codes, used when declaration errors are reported as Issues.
	CodeParseError    = "parse_error"
	CodeInvalidKey    = "invalid_key"
	CodeShapeMismatch = "shape_mismatch"
	CodeNotDeclared   = "not_declared"
)

var (
	// ErrInvalidKey reports a requirement naming a field absent from the base shape.
	ErrInvalidKey = errors.New("goshape: invalid key")
	// ErrShapeMismatch reports PassedInto across schemas built from different base shapes.
	ErrShapeMismatch = errors.New("goshape: base shape mismatch")
	// ErrNotDeclared reports PassedInto naming a field the declarer does not
	// declare as a derived schema.
	ErrNotDeclared = errors.New("goshape: field not declared")
)

// ReferenceError is returned by declarations that reference something that
// does not exist or cannot be merged. Path is the JSON Pointer of the offending
// requirement within the base shape.
type ReferenceError struct {
	Path string
	Key  string
	Err  error
}

func (e *ReferenceError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInvalidKey):
		return fmt.Sprintf("Invalid Key. '%s' not found at %s", e.Key, e.Path)
	case errors.Is(e.Err, ErrShapeMismatch):
		return fmt.Sprintf("cannot merge requirements of '%s': declared against a different base shape", e.Key)
	default:
		return fmt.Sprintf("%v: '%s'", e.Err, e.Key)
	}
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected type names, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"component":"Card", "expected":"number"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As see through aggregated issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssuesFromError converts a declaration error into Issues so that callers
// reporting declarations and validations together get one error model.
// Issues pass through unchanged.
func IssuesFromError(err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	var pe *reqtree.ParseError
	if errors.As(err, &pe) {
		return Issues{{Path: "/", Code: CodeParseError, Message: pe.Msg, Cause: err, Params: map[string]any{"offset": pe.Offset}}}
	}
	var re *ReferenceError
	if errors.As(err, &re) {
		code := CodeInvalidKey
		switch {
		case errors.Is(err, ErrShapeMismatch):
			code = CodeShapeMismatch
		case errors.Is(err, ErrNotDeclared):
			code = CodeNotDeclared
		}
		return Issues{{Path: re.Path, Code: code, Message: re.Error(), Cause: err, Params: map[string]any{"key": re.Key}}}
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
}
