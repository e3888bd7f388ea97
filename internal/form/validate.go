package form

import "accioncsat/internal/model"

// Validate returns the required keys that are unanswered, in declaration order.
// A list answer is unanswered when empty, a scalar one when blank.
func Validate(record model.Record, s *model.Schema) []string {
	missing := []string{}
	for _, q := range s.Questions() {
		if !q.Required {
			continue
		}
		a, ok := record[q.Key]
		if !ok || a.IsEmpty() {
			missing = append(missing, q.Key)
		}
	}
	return missing
}

// Progress counts how many required questions are answered
func Progress(record model.Record, s *model.Schema) model.Progress {
	required := s.RequiredKeys()
	return model.Progress{
		Answered: len(required) - len(Validate(record, s)),
		Required: len(required),
	}
}
