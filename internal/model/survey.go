package model

// ScaleLevel is one step of the rating scale
type ScaleLevel struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Section groups questions under a heading
type Section struct {
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Schema is the static questionnaire every form session answers
type Schema struct {
	Title        string       `json:"title" yaml:"title"`
	Intro        string       `json:"intro,omitempty" yaml:"intro,omitempty"`
	LowRatingMax int          `json:"lowRatingMax" yaml:"lowRatingMax"` // Ratings at or below need a justification
	Scale        []ScaleLevel `json:"scale" yaml:"scale"`
	Sections     []Section    `json:"sections" yaml:"sections"`
}

// Questions returns every question in declaration order
func (s *Schema) Questions() []*Question {
	var out []*Question
	for i := range s.Sections {
		for j := range s.Sections[i].Questions {
			out = append(out, &s.Sections[i].Questions[j])
		}
	}
	return out
}

// Question looks up a question by key
func (s *Schema) Question(key string) (*Question, bool) {
	for _, q := range s.Questions() {
		if q.Key == key {
			return q, true
		}
	}
	return nil, false
}

// OwnerOfOther returns the question whose OtherKey is key
func (s *Schema) OwnerOfOther(key string) (*Question, bool) {
	if key == "" {
		return nil, false
	}
	for _, q := range s.Questions() {
		if q.OtherKey == key {
			return q, true
		}
	}
	return nil, false
}

// RequiredKeys lists the required question keys in declaration order
func (s *Schema) RequiredKeys() []string {
	var keys []string
	for _, q := range s.Questions() {
		if q.Required {
			keys = append(keys, q.Key)
		}
	}
	return keys
}

// HasScaleValue reports whether v is a level of the rating scale
func (s *Schema) HasScaleValue(v string) bool {
	for _, l := range s.Scale {
		if l.Value == v {
			return true
		}
	}
	return false
}
