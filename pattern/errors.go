package pattern

import (
	"fmt"
	"strings"

	"github.com/gnolang/tokpat/tokentree"
)

// SyntaxError reports malformed pattern syntax.
type SyntaxError struct {
	Pos tokentree.Position
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Pos, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// NoParameterInRepetitionError is returned for a repetition that references
// no parameter, since nothing could tell how many times it repeats.
type NoParameterInRepetitionError struct {
	Pos tokentree.Position
}

func (e *NoParameterInRepetitionError) Error() string {
	return fmt.Sprintf("%s: repetition does not reference any parameter", e.Pos)
}

// IncompatibleRepetitionsError is returned when a name is used under two
// different repetition classifications.
type IncompatibleRepetitionsError struct {
	Name   string
	Pos    tokentree.Position
	First  []RepetitionKind
	Second []RepetitionKind
}

func (e *IncompatibleRepetitionsError) Error() string {
	return fmt.Sprintf("%s: parameter `%s` used in incompatible repetitions: %s and %s",
		e.Pos, e.Name, formatPath(e.First), formatPath(e.Second))
}

// IndexConflictError is returned when a name is used both as a parameter and
// as a repetition index.
type IndexConflictError struct {
	Name string
	Pos  tokentree.Position
}

func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("%s: `%s` is used both as a parameter and as an index", e.Pos, e.Name)
}

type MatchErrorKind int

const (
	MismatchedToken MatchErrorKind = iota
	UnexpectedEnd
	TrailingInput
	ExpectedEndOfGroup
	PayloadMismatch
)

func (k MatchErrorKind) String() string {
	switch k {
	case MismatchedToken:
		return "mismatched token"
	case UnexpectedEnd:
		return "unexpected end of input"
	case TrailingInput:
		return "trailing input"
	case ExpectedEndOfGroup:
		return "expected end of group"
	case PayloadMismatch:
		return "payload mismatch"
	default:
		return "unknown"
	}
}

// MatchError reports why input did not match a pattern.
type MatchError struct {
	Kind MatchErrorKind
	Pos  tokentree.Position
	Msg  string
	Err  error
}

func (e *MatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Pos, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *MatchError) Unwrap() error { return e.Err }

// BindingMismatchError is returned when a name is bound twice to different
// values.
type BindingMismatchError struct {
	Name     string
	Existing string
	Found    string
}

func (e *BindingMismatchError) Error() string {
	return fmt.Sprintf("cannot bind parameter `%s` to value `%s`: already has value `%s`",
		e.Name, e.Found, e.Existing)
}

// BindingTypeMismatchError is returned when a binding has a different shape
// than the pattern expects at the place it is used.
type BindingTypeMismatchError struct {
	Name     string
	Expected BindingKind
	Found    BindingKind
}

func (e *BindingTypeMismatchError) Error() string {
	return fmt.Sprintf("expected parameter `%s` to have binding of type %s: found binding of type %s",
		e.Name, e.Expected, e.Found)
}

type BindingNotFoundError struct {
	Name string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("expected binding for parameter `%s`", e.Name)
}

// RepetitionLenMismatchError is returned when bindings disagree on how many
// times a repetition runs. With Index set, Name is a repetition index whose
// bound count differs from the number of iterations produced.
type RepetitionLenMismatchError struct {
	Name     string
	Expected int
	Found    int
	Index    bool
}

func (e *RepetitionLenMismatchError) Error() string {
	if e.Index {
		return fmt.Sprintf("expected index `%s` to count to %d: counted to %d", e.Name, e.Expected, e.Found)
	}
	return fmt.Sprintf("expected `%s` to repeat %d times: found %d", e.Name, e.Expected, e.Found)
}

// EmptyRepetitionError is returned when a one-or-more repetition is given an
// empty list.
type EmptyRepetitionError struct {
	Name string
}

func (e *EmptyRepetitionError) Error() string {
	return fmt.Sprintf("expected at least one binding for `%s` in one-or-more repetition", e.Name)
}

func formatPath(path []RepetitionKind) string {
	if len(path) == 0 {
		return "scalar"
	}
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = k.String()
	}
	return strings.Join(parts, " > ")
}
