package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate document files",
	Long: `Validate one or more DTE JSON files against the type-specific schema
and the cross-field business rules.

Checks performed:
  - Required fields and patterns per document type
  - Line arithmetic: price*qty - discount = taxed + exempt + not-subject
  - Summary totals reconciliation per tax category
  - 13% tax-rate consistency on the taxed total
  - Recipient identification threshold for consumer sales

Examples:
  dte-engine validate factura.json
  dte-engine validate *.json -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// fileValidation holds the result of validating a single file.
type fileValidation struct {
	File       string            `json:"file"`
	Valid      bool              `json:"valid"`
	Violations []model.Violation `json:"violations,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	pipeline := validation.NewPipeline()
	results := make([]fileValidation, 0, len(args))
	allValid := true

	for _, file := range args {
		r := fileValidation{File: file, Valid: true}

		doc, err := readDocument(file)
		if err != nil {
			r.Valid = false
			r.Error = err.Error()
		} else {
			_, violations := pipeline.Validate(doc, doc.Type())
			r.Violations = violations
			r.Valid = !model.HasBlocking(violations)
		}

		if !r.Valid {
			allValid = false
		}
		results = append(results, r)
	}

	if outputFormat == "json" {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
			}
			if r.Error != "" {
				fmt.Printf("  - %s\n", r.Error)
			}
			for _, v := range r.Violations {
				marker := "-"
				if !v.Blocking() {
					marker = "⚠"
				}
				fmt.Printf("  %s %s\n", marker, v.String())
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}
