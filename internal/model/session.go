package model

import "time"

type SessionStatus string

const (
	SessionEditing    SessionStatus = "editing"
	SessionSubmitting SessionStatus = "submitting"
	SessionSubmitted  SessionStatus = "submitted"
)

// LowRatingExample is the justification captured for a low rating. One per question key.
type LowRatingExample struct {
	QuestionKey string `json:"questionKey"`
	Rating      string `json:"rating"`
	Example     string `json:"example"`
}

// LowRatingPrompt is an open justification request. The rating is not committed until
// the justification is submitted.
type LowRatingPrompt struct {
	QuestionKey string `json:"questionKey"`
	Rating      string `json:"rating"`
	Previous    string `json:"previous,omitempty"` // Existing justification when editing
}

// FormSession is one respondent's in-progress survey
type FormSession struct {
	ID          string             `json:"id"`
	Record      Record             `json:"record"`
	Examples    []LowRatingExample `json:"examples"`
	Prompt      *LowRatingPrompt   `json:"prompt,omitempty"`
	Errors      []string           `json:"errors"`
	Status      SessionStatus      `json:"status"`
	Submissions int                `json:"submissions"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty"`
}

// Example returns the justification stored for key
func (s *FormSession) Example(key string) (LowRatingExample, bool) {
	for _, e := range s.Examples {
		if e.QuestionKey == key {
			return e, true
		}
	}
	return LowRatingExample{}, false
}

// HasError reports whether key is in the current error set
func (s *FormSession) HasError(key string) bool {
	for _, k := range s.Errors {
		if k == key {
			return true
		}
	}
	return false
}

// Progress counts answered required questions
type Progress struct {
	Answered int `json:"answered"`
	Required int `json:"required"`
}

// SessionView is what clients render: the session plus derived fields
type SessionView struct {
	*FormSession
	ActiveExamples []LowRatingExample `json:"activeExamples"`
	Progress       Progress           `json:"progress"`
}
