// Package form holds the response-state rules of a survey form: field updates, the
// low-rating justification prompt, completeness validation and the submission gate.
// It mutates a model.FormSession in place and does no I/O.
package form

import (
	"accioncsat/internal/model"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Engine applies form operations against one questionnaire
type Engine struct {
	schema *model.Schema
	now    func() time.Time
}

// NewEngine creates an engine for the schema
func NewEngine(s *model.Schema) *Engine {
	return &Engine{
		schema: s,
		now:    time.Now,
	}
}

// Schema returns the questionnaire this engine enforces
func (e *Engine) Schema() *model.Schema {
	return e.schema
}

// NewSession creates a session with an all-empty record
func (e *Engine) NewSession(id string) *model.FormSession {
	now := e.now()
	return &model.FormSession{
		ID:        id,
		Record:    model.NewRecord(e.schema),
		Examples:  []model.LowRatingExample{},
		Errors:    []string{},
		Status:    model.SessionEditing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsLowRating reports whether v is a scale value at or below the low-rating threshold
func (e *Engine) IsLowRating(v string) bool {
	if !e.schema.HasScaleValue(v) {
		return false
	}
	n, err := strconv.Atoi(v)
	return err == nil && n <= e.schema.LowRatingMax
}

// UpdateField replaces the value stored for key and drops key from the error set.
// Completeness is not checked here. Low ratings are refused; they go through SelectRating.
func (e *Engine) UpdateField(s *model.FormSession, key string, a model.Answer) error {
	a, err := e.CheckAnswer(key, a)
	if err != nil {
		return err
	}
	if q, ok := e.schema.Question(key); ok && q.Kind == model.QuestionKindRating && e.IsLowRating(a.Text()) {
		return fmt.Errorf("%s: %w", key, ErrJustificationNeeded)
	}

	e.set(s, key, a)
	return nil
}

// CheckAnswer validates an answer for key against the schema and returns it normalized.
// The variant must match the question kind, ratings must be scale levels and choices
// declared options. Blank values and low ratings pass here.
func (e *Engine) CheckAnswer(key string, a model.Answer) (model.Answer, error) {
	if owner, ok := e.schema.OwnerOfOther(key); ok {
		if a.IsMulti() {
			return a, fmt.Errorf("%s (other text of %s): %w", key, owner.Key, ErrAnswerKind)
		}
		return a, nil
	}

	q, ok := e.schema.Question(key)
	if !ok {
		return a, fmt.Errorf("%s: %w", key, ErrUnknownQuestion)
	}
	if q.IsMulti() != a.IsMulti() {
		return a, fmt.Errorf("%s: %w", key, ErrAnswerKind)
	}

	switch q.Kind {
	case model.QuestionKindRating:
		if v := a.Text(); strings.TrimSpace(v) != "" && !e.acceptsRating(q, v) {
			return a, fmt.Errorf("%s: rating %q: %w", key, v, ErrInvalidOption)
		}
	case model.QuestionKindChoice:
		if v := a.Text(); strings.TrimSpace(v) != "" && !q.HasOption(v) {
			return a, fmt.Errorf("%s: %q: %w", key, v, ErrInvalidOption)
		}
	case model.QuestionKindMultiChoice:
		values := dedupe(a.Values())
		for _, v := range values {
			if !q.HasOption(v) {
				return a, fmt.Errorf("%s: %q: %w", key, v, ErrInvalidOption)
			}
		}
		a = model.MultiAnswer(values...)
	}
	return a, nil
}

// ToggleOption adds or removes one value of a multi-choice answer
func (e *Engine) ToggleOption(s *model.FormSession, key, value string, checked bool) error {
	q, ok := e.schema.Question(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrUnknownQuestion)
	}
	if !q.IsMulti() {
		return fmt.Errorf("%s: %w", key, ErrAnswerKind)
	}
	if !q.HasOption(value) {
		return fmt.Errorf("%s: %q: %w", key, value, ErrInvalidOption)
	}

	current := s.Record[key].Values()
	next := make([]string, 0, len(current)+1)
	present := false
	for _, v := range current {
		if v == value {
			present = true
			if !checked {
				continue
			}
		}
		next = append(next, v)
	}
	if checked && !present {
		next = append(next, value)
	}
	e.set(s, key, model.MultiAnswer(next...))
	return nil
}

// ActiveExamples returns the justifications whose rating is still the committed value
func (e *Engine) ActiveExamples(s *model.FormSession) []model.LowRatingExample {
	active := []model.LowRatingExample{}
	for _, ex := range s.Examples {
		if a, ok := s.Record[ex.QuestionKey]; ok && a.Text() == ex.Rating && e.IsLowRating(ex.Rating) {
			active = append(active, ex)
		}
	}
	return active
}

// View builds the client-facing representation of a session
func (e *Engine) View(s *model.FormSession) *model.SessionView {
	return &model.SessionView{
		FormSession:    s,
		ActiveExamples: e.ActiveExamples(s),
		Progress:       Progress(s.Record, e.schema),
	}
}

func (e *Engine) acceptsRating(q *model.Question, v string) bool {
	if v == model.NotApplicable {
		return q.IncludeNA
	}
	return e.schema.HasScaleValue(v)
}

func (e *Engine) set(s *model.FormSession, key string, a model.Answer) {
	if s.Record == nil {
		s.Record = model.NewRecord(e.schema)
	}
	s.Record[key] = a
	clearError(s, key)
	e.touch(s)
}

func (e *Engine) touch(s *model.FormSession) {
	s.UpdatedAt = e.now()
}

func clearError(s *model.FormSession, key string) {
	if len(s.Errors) == 0 {
		return
	}
	kept := s.Errors[:0]
	for _, k := range s.Errors {
		if k != key {
			kept = append(kept, k)
		}
	}
	s.Errors = kept
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
