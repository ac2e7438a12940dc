package normalize

import (
	"fmt"
	"strings"

	"github.com/sourceplane/pressplan/internal/planner"
)

type ValidationError struct {
	FieldPath string
	Message   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldPath, e.Message)
}

// ValidationErrors collects every problem found in a request. It unwraps to
// an InvalidInput planner error.
type ValidationErrors struct {
	Errors          []ValidationError
	missingQuantity bool
}

func (ve *ValidationErrors) Add(fieldPath, format string, args ...any) {
	ve.Errors = append(ve.Errors, ValidationError{FieldPath: fieldPath, Message: fmt.Sprintf(format, args...)})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Error is the headline: the fixed missing-quantity message when a part has
// no usable target, otherwise a count of the problems.
func (ve *ValidationErrors) Error() string {
	if ve.missingQuantity {
		return planner.MissingQuantityMessage
	}
	if len(ve.Errors) == 1 {
		return "invalid production request: " + ve.Errors[0].Error()
	}
	return fmt.Sprintf("invalid production request: %d problems", len(ve.Errors))
}

func (ve *ValidationErrors) Unwrap() error {
	return &planner.Error{Kind: planner.KindInvalidInput, Reason: ve.Error()}
}

func (ve *ValidationErrors) FormatStderr() string {
	var sb strings.Builder
	for _, e := range ve.Errors {
		fmt.Fprintf(&sb, "error: %s: %s\n", e.FieldPath, e.Message)
	}
	return sb.String()
}
