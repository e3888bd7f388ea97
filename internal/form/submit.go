package form

import (
	"accioncsat/internal/model"
	"time"
)

// BeginSubmit runs the completeness check. On failure the error set is replaced and an
// *IncompleteFormError is returned. On success the session moves to submitting.
func (e *Engine) BeginSubmit(s *model.FormSession) error {
	if s.Status == model.SessionSubmitting {
		return ErrSubmissionInProgress
	}

	missing := Validate(s.Record, e.schema)
	s.Errors = missing
	e.touch(s)
	if len(missing) > 0 {
		return &IncompleteFormError{
			Missing: append([]string(nil), missing...),
			Focus:   missing[0],
		}
	}

	s.Status = model.SessionSubmitting
	return nil
}

// CompleteSubmit records a finished submission
func (e *Engine) CompleteSubmit(s *model.FormSession) {
	at := e.now()
	s.Status = model.SessionSubmitted
	s.Submissions++
	s.SubmittedAt = &at
	s.UpdatedAt = at
}

// Snapshot is the payload handed to the submitter
type Snapshot struct {
	SessionID string                   `json:"sessionId"`
	Record    model.Record             `json:"record"`
	Examples  []model.LowRatingExample `json:"examples"`
	TakenAt   time.Time                `json:"takenAt"`
}

// Snapshot copies the parts of a session that get submitted
func (e *Engine) Snapshot(s *model.FormSession) Snapshot {
	examples := make([]model.LowRatingExample, len(s.Examples))
	copy(examples, s.Examples)
	return Snapshot{
		SessionID: s.ID,
		Record:    s.Record.Clone(),
		Examples:  examples,
		TakenAt:   e.now(),
	}
}
