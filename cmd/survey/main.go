// Command survey runs the customer satisfaction survey service and its offline tools.
package main

import (
	"accioncsat/internal/config"
	"accioncsat/internal/model"
	"accioncsat/internal/schema"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	schemaFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "survey",
	Short: "Customer satisfaction survey form service",
	Long: `survey serves the customer satisfaction questionnaire as form sessions over
HTTP and WebSocket, and checks saved responses for completeness.

Configuration comes from the environment (PORT, REDIS_URL, SESSION_TTL,
SUBMIT_DELAY, SESSION_SECRET, SURVEY_SCHEMA, LOG_LEVEL, CORS_ALLOWED_ORIGINS);
flags override it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if schemaFile != "" {
			cfg.SchemaPath = schemaFile
		}

		// Initialize logger
		zapCfg := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&schemaFile, "file", "f", "", "Questionnaire YAML file (default: built-in, or SURVEY_SCHEMA)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(checkCmd)
}

func loadSchema() (*model.Schema, error) {
	survey, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}
	return survey, nil
}

// @title Customer Satisfaction Survey API
// @version 1.0
// @description Form sessions for the customer satisfaction survey
// @BasePath /v1
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
