// Package diagnostics defines the error vocabulary shared by every pass of
// the query-grounding core. It is modeled on funxy's internal/diagnostics
// package: callers never construct a bare error string, they build a
// *Error carrying a Code and a source Pos so the compiler's
// surrounding error envelope (out of scope here) can report it uniformly.
package diagnostics

import "fmt"

// Code identifies the kind of diagnostic, independent of its message text.
// Tests match on Code rather than on message substrings wherever possible,
// the same convention funxy's analyzer tests use (expectAnalyzerError).
type Code string

const (
	// UngroundedPattern: a used pattern could not be given a finite generator.
	UngroundedPattern Code = "ungrounded_pattern"
	// PatternMustBeIdentifier: pattern-flattening needed an id in a
	// destructuring position and found something else.
	PatternMustBeIdentifier Code = "pattern_must_be_identifier"
	// NotInvertible: transitive-closure analysis hit a non-invertible base case.
	NotInvertible Code = "not_invertible"
	// TypeMismatch: a generator's expression type disagrees with its goal
	// pattern's type, or unification failed.
	TypeMismatch Code = "type_mismatch"
	// InvariantViolation: a programmer error inside the core itself (bad
	// pattern shape, contradictory invariant) — never expected to surface
	// from a well-formed IR, never recovered from.
	InvariantViolation Code = "invariant_violation"
)

// Pos is a source position. The core does not lex or parse (spec §1), so
// most Pos values it manufactures are zero-valued; Pos is carried so that
// an upstream parser's positions survive the round trip through the core
// untouched.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 && p.Column == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is the single error type surfaced by every component in this
// module. It implements the standard error interface plus Unwrap so
// callers can use errors.Is/errors.As against Code via Is.
type Error struct {
	Code    Code
	Pos     Pos
	Message string
	Wrapped error
}

func New(code Code, pos Pos, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, pos Pos, err error, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 && e.Pos.Column == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is lets errors.Is(err, diagnostics.UngroundedPattern) work by comparing
// against a sentinel *Error whose Code is all that matters. Callers
// typically use HasCode instead; Is exists for standard-library ergonomics.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// HasCode reports whether err is a *Error (possibly wrapped) with the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if de, ok := err.(*Error); ok {
			if de.Code == code {
				return true
			}
			err = de.Wrapped
			continue
		}
		break
	}
	return false
}
