package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-review/internal/schemas"
	schemafiles "github.com/jonathan/resume-review/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a schema",
	Long: "Validates a resume, changes or decisions file against the bundled JSON Schema, " +
		"or against any schema file given with --schema.",
	RunE: runValidate,
}

var (
	validateKind   string
	validateSchema string
	validateJSON   string
)

var bundledSchemas = map[string]string{
	"resume":    schemafiles.Resume,
	"changes":   schemafiles.Changes,
	"decisions": schemafiles.Decisions,
}

func init() {
	validateCmd.Flags().StringVarP(&validateKind, "kind", "k", "resume", "Bundled schema to use: resume, changes or decisions")
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a JSON Schema file (overrides --kind)")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "Path to the JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if validateSchema != "" {
		err = schemas.ValidateJSON(validateSchema, validateJSON)
	} else {
		name, ok := bundledSchemas[validateKind]
		if !ok {
			return fmt.Errorf("unknown kind %q: expected resume, changes or decisions", validateKind)
		}
		data, readErr := os.ReadFile(validateJSON)
		if readErr != nil {
			return fmt.Errorf("JSON file not found: %s", validateJSON)
		}
		err = schemas.ValidateEmbedded(name, data)
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), validationErr.Error())
		return fmt.Errorf("validation failed: %d error(s)", len(validationErr.Errors))
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", validateJSON)
	return nil
}
