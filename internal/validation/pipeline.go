// Package validation composes normalization, structural schema checks and
// cross-field business rules into one deterministic pipeline. Violations
// are data, never errors: a pipeline run always returns the normalized
// document plus an ordered list of findings.
package validation

import (
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// Pipeline validates documents. It holds no mutable state; a single
// instance is safe for any number of concurrent callers.
type Pipeline struct{}

// NewPipeline creates a validation pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Validate normalizes the raw document, then runs the schema selected by
// docType and the ordered business rules against the normalized form.
// Schema violations precede rule violations in the returned list.
func (p *Pipeline) Validate(doc model.Document, docType model.DocumentType) (model.Document, []model.Violation) {
	normalized := Normalize(doc)
	if normalized.Identification.Type == "" {
		normalized.Identification.Type = docType
	}

	violations := SchemaFor(docType).Validate(normalized)
	violations = append(violations, ApplyRules(normalized)...)
	return normalized, violations
}
