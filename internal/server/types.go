package server

import (
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// ProcessRequest submits one document for full workflow processing.
type ProcessRequest struct {
	Document          model.Document          `json:"document"`
	Direction         model.FlowDirection     `json:"direction"`
	Credential        string                  `json:"credential,omitempty"`
	ContingencyReason model.ContingencyReason `json:"contingencyReason,omitempty"`
}

// BatchRequest submits several documents for sequential ingestion.
type BatchRequest struct {
	Documents []ProcessRequest `json:"documents"`
}

// ValidationResponse is the response for the validate endpoint.
type ValidationResponse struct {
	Valid      bool              `json:"valid"`
	Document   model.Document    `json:"document"`
	Violations []model.Violation `json:"violations,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}
