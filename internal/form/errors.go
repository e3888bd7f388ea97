package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrAnswerKind           = errors.New("answer does not match question kind")
	ErrInvalidOption        = errors.New("value is not an option of this question")
	ErrNotRating            = errors.New("question is not a rating")
	ErrJustificationNeeded  = errors.New("low ratings must be selected through the rating prompt")
	ErrNoPendingPrompt      = errors.New("no low-rating prompt is open")
	ErrEmptyJustification   = errors.New("justification text is empty")
	ErrNotLowRating         = errors.New("question has no committed low rating")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// IncompleteFormError lists the required questions still unanswered, in schema order.
// Focus is the question a client should scroll to.
type IncompleteFormError struct {
	Missing []string
	Focus   string
}

func (e *IncompleteFormError) Error() string {
	return fmt.Sprintf("form incomplete: %d unanswered (%s)", len(e.Missing), strings.Join(e.Missing, ", "))
}
