package workflow

import (
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/ledger"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// Status is the explicit processing state of one workflow run.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusValidating   Status = "validating"
	StatusSigning      Status = "signing"
	StatusTransmitting Status = "transmitting"
	StatusReceiving    Status = "receiving"
	StatusContingency  Status = "contingency"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether the status ends a run. Terminated runs are
// never resumed; callers wanting another attempt start a brand-new run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// MaxTransmitRetries is the fixed ceiling of re-transmissions after the
// initial attempt.
const MaxTransmitRetries = 2

// Submission is what a caller hands to the engine.
type Submission struct {
	Document    model.Document
	Direction   model.FlowDirection
	Environment model.Environment
	// Credential is the signing credential for emission flows. Transient:
	// held only for the duration of the run, never persisted or logged.
	Credential string
	// ContingencyReason overrides the default reason code used if the run
	// escalates to deferred issuance.
	ContingencyReason model.ContingencyReason
}

// State is the engine's working state for one run. It is created once per
// submission, mutated only by Transition, and discarded after the
// terminal state is reported.
type State struct {
	Document          model.Document
	Direction         model.FlowDirection
	Environment       model.Environment
	Credential        string
	Status            Status
	Envelope          string
	ReceiptSeal       string
	Retries           int
	Deferred          bool
	ContingencyReason model.ContingencyReason
	Violations        []model.Violation
	Warnings          []string
	Failure           *model.WorkflowError
}

// Outcome is the terminal result reported to the caller.
type Outcome struct {
	Status      Status               `json:"status"`
	Document    model.Document       `json:"document"`
	Violations  []model.Violation    `json:"violations,omitempty"`
	Envelope    string               `json:"envelope,omitempty"`
	ReceiptSeal string               `json:"receiptSeal,omitempty"`
	Deferred    bool                 `json:"deferred"`
	Warnings    []string             `json:"warnings,omitempty"`
	Ledger      *ledger.Ledger       `json:"ledger,omitempty"`
	Failure     *model.WorkflowError `json:"-"`
	FailureMsg  string               `json:"failure,omitempty"`
}

func newState(sub Submission) State {
	doc := sub.Document
	if sub.Environment != "" {
		doc.Identification.Environment = sub.Environment
	}
	reason := sub.ContingencyReason
	if reason == 0 {
		reason = model.ContingencyAuthorityUnavailable
	}
	return State{
		Document:          doc,
		Direction:         sub.Direction,
		Environment:       doc.Identification.Environment,
		Credential:        sub.Credential,
		Status:            StatusDraft,
		ContingencyReason: reason,
	}
}
