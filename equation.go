package implicit

import (
	"errors"
	"strings"
)

// Variables lists the names which may appear free in an expression.
var Variables = []string{"t", "x", "y"}

func isVar(name string) bool {
	switch name {
	case "x", "y", "t":
		return true
	}
	return false
}

// ErrEmpty is returned by ParseEquation for blank input.
var ErrEmpty = errors.New("implicit: empty equation")

// InvalidError is returned by ParseEquation when the text is not a valid
// relation. Err is usually an InputError; the column in its message counts
// runes of the normalized text "(L) - (R)" when the input contained "=".
type InvalidError struct {
	// Msg is a human-readable diagnostic.
	Msg string
	// Err is the underlying error.
	Err error
}

func (err *InvalidError) Error() string {
	return "implicit: invalid equation: " + err.Msg
}

func (err *InvalidError) Unwrap() error {
	return err.Err
}

// Normalize rewrites an equation into the text of an expression equal to
// zero. Surrounding space is trimmed, "**" becomes "^", and text containing
// "=" is split on the first one into "(L) - (R)". The result is empty only if
// the input is blank.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "**", "^")
	if l, r, ok := strings.Cut(s, "="); ok {
		s = "(" + l + ") - (" + r + ")"
	}
	return s
}

// ParseEquation parses a relation among x, y, and t and simplifies it. The
// result F is the expression such that the relation is F = 0. Blank input
// gives ErrEmpty. Any other failure is an *InvalidError.
func ParseEquation(raw string, opts ...ParseOption) (*Expr, error) {
	s := Normalize(raw)
	if s == "" {
		return nil, ErrEmpty
	}
	ex, err := Parse(strings.NewReader(s), opts...)
	if err != nil {
		return nil, &InvalidError{Msg: err.Error(), Err: err}
	}
	return ex.Simplify(), nil
}
