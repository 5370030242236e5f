package model

import "fmt"

// FailureKind classifies every way a workflow run can fail.
type FailureKind string

const (
	FailureStructural    FailureKind = "structural"
	FailureBusinessRule  FailureKind = "business_rule"
	FailureSigning       FailureKind = "signing"
	FailureRejection     FailureKind = "authority_rejection"
	FailureCommunication FailureKind = "communication"
)

// WorkflowError is the single error type the workflow surfaces. Lower-layer
// failures are converted into one of the five kinds with a machine code and
// a retry-eligibility flag.
type WorkflowError struct {
	Kind      FailureKind
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *WorkflowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s/%s] %s (%v)", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Kind, e.Code, e.Message)
}

func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// NewStructuralError reports blocking schema violations.
func NewStructuralError(message string) *WorkflowError {
	return &WorkflowError{Kind: FailureStructural, Code: "SCHEMA", Message: message}
}

// NewBusinessRuleError reports blocking cross-field rule violations.
func NewBusinessRuleError(message string) *WorkflowError {
	return &WorkflowError{Kind: FailureBusinessRule, Code: "RULES", Message: message}
}

// NewSigningError reports a signing gateway rejection. Never retryable:
// it usually means a bad credential or a malformed payload.
func NewSigningError(code, message string, cause error) *WorkflowError {
	return &WorkflowError{Kind: FailureSigning, Code: code, Message: message, Cause: cause}
}

// NewRejectionError reports an authority-side rejection of a transmitted
// document. Terminal; retrying would resubmit the same invalid content.
func NewRejectionError(code, message string) *WorkflowError {
	return &WorkflowError{Kind: FailureRejection, Code: code, Message: message}
}

// NewCommunicationError reports a transport-level fault reaching the
// authority. Retryable up to the workflow's ceiling.
func NewCommunicationError(message string, cause error) *WorkflowError {
	return &WorkflowError{Kind: FailureCommunication, Code: "TRANSPORT", Message: message, Retryable: true, Cause: cause}
}
