package model

import "fmt"

// Severity splits violations into those that stop processing and those
// that are merely reported.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// Violation codes. Schema codes come from structural validation, rule
// codes from cross-field business checks.
const (
	CodeRequiredField    = "SCHEMA_REQUIRED_FIELD"
	CodePatternMismatch  = "SCHEMA_PATTERN"
	CodeNumericScale     = "SCHEMA_SCALE"
	CodeRecipientID      = "RULE_RECIPIENT_ID"
	CodeItemArithmetic   = "RULE_ITEM_ARITHMETIC"
	CodeTotalsMismatch   = "RULE_TOTALS"
	CodeTaxRateMismatch  = "RULE_TAX_RATE"
	CodeAmountInWords    = "RULE_AMOUNT_IN_WORDS"
)

// Violation is one finding from the validation pipeline. Violations are
// data, never errors; a pipeline run returns zero or more.
type Violation struct {
	Code        string   `json:"code"`
	Field       string   `json:"field"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Field, v.Description)
}

// Blocking reports whether the violation stops the workflow.
func (v Violation) Blocking() bool {
	return v.Severity == SeverityBlocking
}

// HasBlocking reports whether any violation in the list is blocking.
func HasBlocking(violations []Violation) bool {
	for _, v := range violations {
		if v.Blocking() {
			return true
		}
	}
	return false
}
