package main

import (
	"accioncsat/internal/model"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemaYAML bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the loaded questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		survey, err := loadSchema()
		if err != nil {
			return err
		}
		if schemaYAML {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(survey)
		}
		printSchema(cmd.OutOrStdout(), survey)
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaYAML, "yaml", false, "Print the questionnaire as YAML")
}

func printSchema(w io.Writer, survey *model.Schema) {
	fmt.Fprintln(w, survey.Title)
	fmt.Fprintln(w, strings.Repeat("=", len(survey.Title)))

	levels := make([]string, 0, len(survey.Scale))
	for _, l := range survey.Scale {
		levels = append(levels, fmt.Sprintf("%s %s", l.Value, l.Label))
	}
	fmt.Fprintf(w, "Scale: %s\n", strings.Join(levels, " | "))
	fmt.Fprintf(w, "Ratings up to %d need an example\n", survey.LowRatingMax)

	for _, section := range survey.Sections {
		fmt.Fprintf(w, "\n%s\n", section.Title)
		for _, q := range section.Questions {
			marker := ""
			if q.Required {
				marker = " *"
			}
			fmt.Fprintf(w, "  %d. [%s] %s%s\n", q.Number, q.Key, q.Text, marker)
			for _, opt := range q.Options {
				fmt.Fprintf(w, "       - %s (%s)\n", opt.Label, opt.Value)
			}
			if q.IncludeNA {
				fmt.Fprintf(w, "       - %s\n", model.NotApplicable)
			}
		}
	}
}
