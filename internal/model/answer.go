package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Answer holds one response value: a single string or, for multi-choice questions, a list.
// The variant is chosen from the question kind, never from the value itself.
type Answer struct {
	multi  bool
	text   string
	values []string
}

// ScalarAnswer builds a single-value answer
func ScalarAnswer(text string) Answer {
	return Answer{text: text}
}

// MultiAnswer builds a list answer; no values means an empty selection
func MultiAnswer(values ...string) Answer {
	out := make([]string, len(values))
	copy(out, values)
	return Answer{multi: true, values: out}
}

// EmptyAnswer returns the default value for a question
func EmptyAnswer(q *Question) Answer {
	if q.IsMulti() {
		return MultiAnswer()
	}
	return ScalarAnswer("")
}

func (a Answer) IsMulti() bool { return a.multi }

// Text returns the scalar value ("" for list answers)
func (a Answer) Text() string { return a.text }

// Values returns a copy of the list value (nil for scalar answers)
func (a Answer) Values() []string {
	if !a.multi {
		return nil
	}
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

// Contains reports whether a list answer includes v
func (a Answer) Contains(v string) bool {
	for _, s := range a.values {
		if s == v {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the answer counts as unanswered
func (a Answer) IsEmpty() bool {
	if a.multi {
		return len(a.values) == 0
	}
	return strings.TrimSpace(a.text) == ""
}

func (a Answer) String() string {
	if a.multi {
		return "[" + strings.Join(a.values, ", ") + "]"
	}
	return a.text
}

// MarshalJSON encodes a scalar answer as a string and a list answer as an array
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	}
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts a string, an array of strings or null
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ScalarAnswer("")
		return nil
	case len(data) > 0 && data[0] == '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("answer list: %w", err)
		}
		*a = MultiAnswer(values...)
		return nil
	default:
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("answer must be a string or a list of strings: %w", err)
		}
		*a = ScalarAnswer(text)
		return nil
	}
}

// Record maps question keys to answers. Every schema key and every "other" key is present.
type Record map[string]Answer

// NewRecord creates an all-empty record for the schema
func NewRecord(s *Schema) Record {
	r := make(Record)
	for _, q := range s.Questions() {
		r[q.Key] = EmptyAnswer(q)
		if q.OtherKey != "" {
			r[q.OtherKey] = ScalarAnswer("")
		}
	}
	return r
}

// Clone returns a deep copy
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if v.multi {
			out[k] = MultiAnswer(v.values...)
		} else {
			out[k] = v
		}
	}
	return out
}
