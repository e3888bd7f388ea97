package model

// QuestionKind defines how a question is answered and which Answer variant it holds
type QuestionKind string

const (
	QuestionKindRating      QuestionKind = "rating"       // 1-5 scale, low ratings need a justification
	QuestionKindChoice      QuestionKind = "choice"       // Single selection from Options
	QuestionKindMultiChoice QuestionKind = "multi_choice" // Any number of Options, stored as a list
	QuestionKindText        QuestionKind = "text"         // Free text
)

// NotApplicable is the extra rating value accepted when a question sets IncludeNA
const NotApplicable = "N/A"

// Option is a selectable value for choice questions
type Option struct {
	Value    string `json:"value" yaml:"value"`
	Label    string `json:"label" yaml:"label"`
	HasOther bool   `json:"hasOther,omitempty" yaml:"hasOther,omitempty"` // Pairs with Question.OtherKey
}

// Question is one entry of the static questionnaire
type Question struct {
	Key         string       `json:"key" yaml:"key"` // e.g., "q1", "q17"
	Number      int          `json:"number" yaml:"number"`
	Text        string       `json:"text" yaml:"text"`
	KeyAspects  string       `json:"keyAspects,omitempty" yaml:"keyAspects,omitempty"`
	Kind        QuestionKind `json:"kind" yaml:"kind"`
	Required    bool         `json:"required" yaml:"required"`
	IncludeNA   bool         `json:"includeNA,omitempty" yaml:"includeNA,omitempty"`     // rating only
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`         // choice kinds only
	OtherKey    string       `json:"otherKey,omitempty" yaml:"otherKey,omitempty"`       // auxiliary "other" text field
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"` // text only
}

// IsMulti reports whether the question stores a list answer
func (q *Question) IsMulti() bool {
	return q.Kind == QuestionKindMultiChoice
}

// HasOption reports whether value is one of the declared options
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}
