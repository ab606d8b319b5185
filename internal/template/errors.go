package template

import "fmt"

// ErrorKind discriminates the two ways template processing can fail.
// Callers switch on Kind rather than matching error types.
type ErrorKind int

const (
	// KindSyntax means the template markup itself is malformed.
	KindSyntax ErrorKind = iota
	// KindUndefined means rendering referenced a variable that was not supplied.
	KindUndefined
)

// Error is a template processing failure.
type Error struct {
	Kind    ErrorKind
	Message string
	// Line is the 1-based line of the offending construct, when known.
	Line int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Kind == t.Kind
}

// Sentinel values for errors.Is checks.
var (
	ErrSyntax    = &Error{Kind: KindSyntax, Message: "template syntax error"}
	ErrUndefined = &Error{Kind: KindUndefined, Message: "undefined template variable"}
)

func syntaxError(line int, diag string) *Error {
	return &Error{
		Kind:    KindSyntax,
		Message: fmt.Sprintf("Template syntax error: %s", diag),
		Line:    line,
	}
}

func undefinedError(name string) *Error {
	return &Error{
		Kind:    KindUndefined,
		Message: fmt.Sprintf("Missing variable: '%s' is undefined", name),
	}
}

// parseError carries the raw diagnostic before it is formatted for a
// caller; Render and Validate present the same failure differently.
type parseError struct {
	line int
	diag string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.diag)
}
