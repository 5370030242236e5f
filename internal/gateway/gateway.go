// Package gateway holds the HTTP adapters for the two external
// collaborators the workflow depends on: the signing service that owns
// cryptographic signing, and the authority reception endpoint. The core
// only formats requests and classifies responses; both services are
// treated as opaque.
package gateway

import (
	"context"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// SignRequest carries everything the signing service needs. The credential
// is transient: it is never logged or persisted.
type SignRequest struct {
	IssuerTaxID string
	Credential  string
	Document    model.Document
}

// Signer produces an opaque signed envelope for a document.
type Signer interface {
	Sign(ctx context.Context, req SignRequest) (string, error)
}

// TransmitStatus is the classified outcome reported by the authority.
type TransmitStatus string

const (
	StatusAccepted             TransmitStatus = "accepted"
	StatusAcceptedWithWarnings TransmitStatus = "accepted_with_warnings"
	StatusRejected             TransmitStatus = "rejected"
	StatusProcessing           TransmitStatus = "processing"
)

// TransmitResult is the authority's answer to a transmission. A result is
// only produced when the authority actually answered; transport-level
// faults surface as *model.WorkflowError with the communication kind.
type TransmitResult struct {
	Status      TransmitStatus
	ReceiptSeal string
	Warnings    []string
	Errors      []string
}

// Transmitter delivers a signed envelope to the authority.
type Transmitter interface {
	Transmit(ctx context.Context, envelope string, env model.Environment) (*TransmitResult, error)
}
