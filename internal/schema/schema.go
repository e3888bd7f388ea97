// Package schema loads and checks the questionnaire that every form session answers.
package schema

import (
	"accioncsat/internal/model"
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in customer satisfaction questionnaire
func Default() (*model.Schema, error) {
	return Parse(defaultYAML)
}

// Load reads a questionnaire from a YAML file. An empty path selects the built-in one.
func Load(path string) (*model.Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a questionnaire
func Parse(data []byte) (*model.Schema, error) {
	var s model.Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the structural rules a questionnaire must satisfy
func Validate(s *model.Schema) error {
	if len(s.Scale) == 0 {
		return fmt.Errorf("schema has no rating scale")
	}
	for _, l := range s.Scale {
		if _, err := strconv.Atoi(l.Value); err != nil {
			return fmt.Errorf("scale value %q is not a number", l.Value)
		}
	}
	if s.LowRatingMax < 0 || s.LowRatingMax > len(s.Scale) {
		return fmt.Errorf("lowRatingMax %d outside the scale", s.LowRatingMax)
	}

	questions := s.Questions()
	if len(questions) == 0 {
		return fmt.Errorf("schema has no questions")
	}

	seen := make(map[string]bool)
	claim := func(key string) error {
		if key == "" {
			return fmt.Errorf("question without key")
		}
		if seen[key] {
			return fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true
		return nil
	}

	for _, q := range questions {
		if err := claim(q.Key); err != nil {
			return err
		}
		switch q.Kind {
		case model.QuestionKindRating, model.QuestionKindText:
			if len(q.Options) > 0 {
				return fmt.Errorf("question %s: %s questions take no options", q.Key, q.Kind)
			}
		case model.QuestionKindChoice, model.QuestionKindMultiChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %s: %s question needs options", q.Key, q.Kind)
			}
		default:
			return fmt.Errorf("question %s: unknown kind %q", q.Key, q.Kind)
		}
		if q.IncludeNA && q.Kind != model.QuestionKindRating {
			return fmt.Errorf("question %s: includeNA only applies to ratings", q.Key)
		}

		hasOther := false
		for _, o := range q.Options {
			if o.HasOther {
				hasOther = true
			}
		}
		if q.OtherKey != "" {
			if !hasOther {
				return fmt.Errorf("question %s: otherKey set without an \"other\" option", q.Key)
			}
			if err := claim(q.OtherKey); err != nil {
				return err
			}
		} else if hasOther {
			return fmt.Errorf("question %s: \"other\" option needs an otherKey", q.Key)
		}
	}
	return nil
}
