package workflow

import (
	"strings"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/gateway"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// Event is something that happened to a run: the result of an effect the
// engine performed. Events drive the pure transition function.
type Event interface {
	isEvent()
}

// EventStart opens a run from draft.
type EventStart struct{}

// EventValidated carries the pipeline result.
type EventValidated struct {
	Document   model.Document
	Violations []model.Violation
}

// EventSigned carries the signed envelope.
type EventSigned struct {
	Envelope string
}

// EventSignFailed reports a signing gateway failure.
type EventSignFailed struct {
	Err *model.WorkflowError
}

// EventTransmitted carries the authority's classified verdict.
type EventTransmitted struct {
	Result *gateway.TransmitResult
}

// EventTransmitFailed reports a transport-level fault.
type EventTransmitFailed struct {
	Err *model.WorkflowError
}

// EventContingencyApplied carries the document rewritten for deferred
// issuance; the run re-enters signing with the deferred marker set.
type EventContingencyApplied struct {
	Document model.Document
	Reason   model.ContingencyReason
}

func (EventStart) isEvent()              {}
func (EventValidated) isEvent()          {}
func (EventSigned) isEvent()             {}
func (EventSignFailed) isEvent()         {}
func (EventTransmitted) isEvent()        {}
func (EventTransmitFailed) isEvent()     {}
func (EventContingencyApplied) isEvent() {}

// Transition is the pure state-transition function. It performs no I/O
// and never mutates its input; the engine owns effect execution and feeds
// the resulting events back in.
func Transition(s State, ev Event) State {
	if s.Status.Terminal() {
		return s
	}

	switch ev := ev.(type) {
	case EventStart:
		if s.Direction == model.DirectionReception {
			s.Status = StatusReceiving
		} else {
			s.Status = StatusValidating
		}

	case EventValidated:
		s.Document = ev.Document
		s.Violations = ev.Violations
		if model.HasBlocking(ev.Violations) {
			s.Failure = violationFailure(ev.Violations)
			s.Status = StatusFailed
			break
		}
		if s.Status == StatusReceiving {
			s.Status = StatusCompleted
		} else {
			s.Status = StatusSigning
		}

	case EventSigned:
		s.Envelope = ev.Envelope
		if s.Deferred {
			// Contingency re-sign: the document is legally issued now;
			// reconciliation with the authority happens out of band.
			s.Status = StatusCompleted
		} else {
			s.Status = StatusTransmitting
		}

	case EventSignFailed:
		s.Failure = ev.Err
		s.Status = StatusFailed

	case EventTransmitted:
		switch ev.Result.Status {
		case gateway.StatusAccepted, gateway.StatusAcceptedWithWarnings, gateway.StatusProcessing:
			s.ReceiptSeal = ev.Result.ReceiptSeal
			s.Warnings = append(s.Warnings, ev.Result.Warnings...)
			if ev.Result.Status == gateway.StatusProcessing {
				s.Warnings = append(s.Warnings, "authority is still processing; receipt seal pending")
			}
			s.Status = StatusCompleted
		case gateway.StatusRejected:
			s.Failure = model.NewRejectionError("RECEPTION", strings.Join(ev.Result.Errors, "; "))
			s.Status = StatusFailed
		}

	case EventTransmitFailed:
		if ev.Err.Retryable && s.Retries < MaxTransmitRetries {
			s.Retries++
			s.Status = StatusTransmitting
			break
		}
		if s.Document.Type().ContingencyEligible() {
			s.Status = StatusContingency
			break
		}
		s.Failure = ev.Err
		s.Status = StatusFailed

	case EventContingencyApplied:
		s.Document = ev.Document
		s.ContingencyReason = ev.Reason
		s.Deferred = true
		s.Status = StatusSigning
	}

	return s
}

// violationFailure picks the failure kind from the first blocking
// violation: schema codes map to structural, everything else to
// business-rule.
func violationFailure(violations []model.Violation) *model.WorkflowError {
	for _, v := range violations {
		if !v.Blocking() {
			continue
		}
		if strings.HasPrefix(v.Code, "SCHEMA_") {
			return model.NewStructuralError(v.String())
		}
		return model.NewBusinessRuleError(v.String())
	}
	return model.NewStructuralError("blocking validation violations")
}
