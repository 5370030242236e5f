// Package ledger maintains the running monthly tax ledger derived from
// completed documents. Apply is a pure function: the caller fetches the
// ledger before and persists the result after, and must guarantee
// at-most-once application per generation code — applying the same
// document twice double-counts it.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// PeriodLayout formats a period key as calendar year-month.
const PeriodLayout = "2006-01"

// Ledger is the running tax position for one calendar month.
type Ledger struct {
	Period string `json:"period"`

	// Emission side.
	GrossIncome     decimal.Decimal `json:"grossIncome"`
	TaxedSales      decimal.Decimal `json:"taxedSales"`
	ExemptSales     decimal.Decimal `json:"exemptSales"`
	NotSubjectSales decimal.Decimal `json:"notSubjectSales"`
	OutputTax       decimal.Decimal `json:"outputTax"`

	// Reception side.
	TaxedPurchases  decimal.Decimal `json:"taxedPurchases"`
	ExemptPurchases decimal.Decimal `json:"exemptPurchases"`
	InputTax        decimal.Decimal `json:"inputTax"`
	WithheldTax     decimal.Decimal `json:"withheldTax"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an empty ledger for a period.
func New(period string) Ledger {
	return Ledger{Period: period}
}

// PeriodOf derives the period key from a document's emission date.
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// Apply folds one completed document into the ledger and returns the
// updated copy. The direction decides which side of the ledger moves.
func Apply(l Ledger, doc model.Document, direction model.FlowDirection) Ledger {
	sum := doc.Summary
	tax := sum.TaxAmount(model.TaxCodeIVA)

	switch direction {
	case model.DirectionEmission:
		l.TaxedSales = l.TaxedSales.Add(sum.TotalTaxed)
		l.ExemptSales = l.ExemptSales.Add(sum.TotalExempt)
		l.NotSubjectSales = l.NotSubjectSales.Add(sum.TotalNotSubject)
		l.GrossIncome = l.GrossIncome.Add(sum.TotalTaxed).Add(sum.TotalExempt).Add(sum.TotalNotSubject)
		l.OutputTax = l.OutputTax.Add(tax)

	case model.DirectionReception:
		if doc.Type() == model.TypeWithholdingReceipt {
			l.WithheldTax = l.WithheldTax.Add(tax)
			break
		}
		l.TaxedPurchases = l.TaxedPurchases.Add(sum.TotalTaxed)
		l.ExemptPurchases = l.ExemptPurchases.Add(sum.TotalExempt)
		// Input tax accrues only from credit-conferring document types; a
		// non-zero tax amount is accepted as a conservative fallback.
		if doc.Type().ConfersTaxCredit() || !tax.IsZero() {
			l.InputTax = l.InputTax.Add(tax)
		}
	}

	l.UpdatedAt = time.Now().UTC()
	return l
}
