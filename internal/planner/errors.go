package planner

import "fmt"

// Kind classifies a fatal planning failure
type Kind string

const (
	KindInvalidInput       Kind = "InvalidInput"
	KindReplanPrecondition Kind = "ReplanPrecondition"
)

// MissingQuantityMessage is reported when a part has no usable target quantity.
const MissingQuantityMessage = "Error: Please fill in the necessary quantity for all parts in the planner."

// Error is a typed failure with a human-readable reason
type Error struct {
	Kind   Kind
	Reason string
}

var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrReplanPrecondition = &Error{Kind: KindReplanPrecondition}
)

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return e.Reason
}

// Is matches any error of the same kind against a sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

// InvalidInput returns an InvalidInput error.
func InvalidInput(reason string) error {
	return &Error{Kind: KindInvalidInput, Reason: reason}
}

// ReplanPrecondition returns a ReplanPrecondition error.
func ReplanPrecondition(format string, args ...any) error {
	return &Error{Kind: KindReplanPrecondition, Reason: fmt.Sprintf(format, args...)}
}
