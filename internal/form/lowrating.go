package form

import (
	"accioncsat/internal/model"
	"fmt"
	"strings"
)

// SelectRating handles a pick on a rating control. A low rating opens the justification
// prompt and leaves the stored value alone; any other rating is stored directly.
// It reports whether a prompt was opened.
func (e *Engine) SelectRating(s *model.FormSession, key, rating string) (bool, error) {
	q, ok := e.schema.Question(key)
	if !ok {
		return false, fmt.Errorf("%s: %w", key, ErrUnknownQuestion)
	}
	if q.Kind != model.QuestionKindRating {
		return false, fmt.Errorf("%s: %w", key, ErrNotRating)
	}
	if !e.acceptsRating(q, rating) {
		return false, fmt.Errorf("%s: rating %q: %w", key, rating, ErrInvalidOption)
	}

	if !e.IsLowRating(rating) {
		// A new pick on the prompted question supersedes the pending low rating
		if s.Prompt != nil && s.Prompt.QuestionKey == key {
			s.Prompt = nil
		}
		e.set(s, key, model.ScalarAnswer(rating))
		return false, nil
	}

	e.openPrompt(s, key, rating)
	return true, nil
}

// EditLowRating reopens the prompt for a committed low rating so its justification can be
// revised. The rating stays as it is unless the prompt is canceled.
func (e *Engine) EditLowRating(s *model.FormSession, key string) error {
	q, ok := e.schema.Question(key)
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrUnknownQuestion)
	}
	if q.Kind != model.QuestionKindRating {
		return fmt.Errorf("%s: %w", key, ErrNotRating)
	}
	committed := s.Record[key].Text()
	if !e.IsLowRating(committed) {
		return fmt.Errorf("%s: %w", key, ErrNotLowRating)
	}
	e.openPrompt(s, key, committed)
	return nil
}

// SubmitJustification commits the pending rating and stores the justification, replacing
// any earlier one for the same question.
func (e *Engine) SubmitJustification(s *model.FormSession, text string) (model.LowRatingExample, error) {
	p := s.Prompt
	if p == nil {
		return model.LowRatingExample{}, ErrNoPendingPrompt
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.LowRatingExample{}, ErrEmptyJustification
	}

	ex := model.LowRatingExample{
		QuestionKey: p.QuestionKey,
		Rating:      p.Rating,
		Example:     text,
	}
	e.set(s, p.QuestionKey, model.ScalarAnswer(p.Rating))
	upsertExample(s, ex)
	s.Prompt = nil
	return ex, nil
}

// CancelPrompt dismisses the prompt. A committed low rating on the prompted question is
// cleared; a committed higher rating is kept.
func (e *Engine) CancelPrompt(s *model.FormSession) error {
	if s.Prompt == nil {
		return ErrNoPendingPrompt
	}
	e.dismiss(s)
	return nil
}

func (e *Engine) openPrompt(s *model.FormSession, key, rating string) {
	if s.Prompt != nil {
		e.dismiss(s)
	}
	p := &model.LowRatingPrompt{
		QuestionKey: key,
		Rating:      rating,
	}
	if ex, ok := s.Example(key); ok {
		p.Previous = ex.Example
	}
	s.Prompt = p
	e.touch(s)
}

func (e *Engine) dismiss(s *model.FormSession) {
	key := s.Prompt.QuestionKey
	s.Prompt = nil
	if e.IsLowRating(s.Record[key].Text()) {
		s.Record[key] = model.ScalarAnswer("")
	}
	e.touch(s)
}

func upsertExample(s *model.FormSession, ex model.LowRatingExample) {
	kept := make([]model.LowRatingExample, 0, len(s.Examples)+1)
	for _, old := range s.Examples {
		if old.QuestionKey != ex.QuestionKey {
			kept = append(kept, old)
		}
	}
	s.Examples = append(kept, ex)
}
