package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a CV document against its JSON schema",
	Long:  "Checks a saved CV document against the embedded document schema, or against --schema when given.",
	RunE:  runValidate,
}

var (
	validateInput  string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to JSON file (required)")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to a JSON schema file (default: embedded document schema)")

	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if validateSchema != "" {
		err = schemas.ValidateJSON(validateSchema, validateInput)
	} else {
		_, err = readDocument(validateInput)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())

	var validationErr *schemas.ValidationError
	switch {
	case err == nil:
		printer.PrintValidation(nil)
		return nil
	case errors.As(err, &validationErr):
		printer.PrintValidation(validationErr)
		return fmt.Errorf("validation failed: %d violation(s)", len(validationErr.Errors))
	default:
		return err
	}
}
