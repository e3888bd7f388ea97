package main

import (
	"accioncsat/internal/form"
	"accioncsat/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var errIncomplete = errors.New("responses incomplete")

var checkCmd = &cobra.Command{
	Use:   "check <responses.json>",
	Short: "Check a saved response file for completeness",
	Long: `Reads a JSON object of question key to answer (a string, or a list of
strings for multiple-choice questions) and lists the required questions that
are still unanswered. Answers of the wrong shape, ratings off the scale and
undeclared options are reported and count as unanswered. Exits with status 1 when any are missing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		survey, err := loadSchema()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open responses: %w", err)
		}
		defer f.Close()

		return checkResponses(cmd.OutOrStdout(), f, survey)
	},
}

// checkResponses validates a response file and writes the outcome to w
func checkResponses(w io.Writer, r io.Reader, survey *model.Schema) error {
	var responses map[string]model.Answer
	if err := json.NewDecoder(r).Decode(&responses); err != nil {
		return fmt.Errorf("decode responses: %w", err)
	}

	engine := form.NewEngine(survey)
	record := model.NewRecord(survey)
	keys := make([]string, 0, len(responses))
	for key := range responses {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	invalid := 0
	for _, key := range keys {
		answer, err := engine.CheckAnswer(key, responses[key])
		switch {
		case errors.Is(err, form.ErrUnknownQuestion):
			fmt.Fprintf(w, "ignoring unknown question %q\n", key)
		case err != nil:
			// Left empty so it counts as unanswered
			fmt.Fprintf(w, "invalid %s: %v\n", key, err)
			invalid++
		default:
			record[key] = answer
		}
	}

	missing := form.Validate(record, survey)
	progress := form.Progress(record, survey)
	fmt.Fprintf(w, "%d of %d required questions answered\n", progress.Answered, progress.Required)
	if len(missing) == 0 && invalid == 0 {
		fmt.Fprintln(w, "complete")
		return nil
	}

	for _, key := range missing {
		text := ""
		if q, ok := survey.Question(key); ok {
			text = q.Text
		}
		fmt.Fprintf(w, "missing %s: %s\n", key, text)
	}
	if len(missing) == 0 {
		return fmt.Errorf("%w: %d invalid answers", errIncomplete, invalid)
	}
	return fmt.Errorf("%w: %d missing, first is %s", errIncomplete, len(missing), missing[0])
}
