package validation

import (
	"strings"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/money"
)

// Normalize canonicalizes a raw document before validation. It is total
// (never fails) and idempotent: normalizing an already-normalized document
// is a no-op. The input is not mutated.
func Normalize(doc model.Document) model.Document {
	id := &doc.Identification
	id.ControlNumber = strings.ToUpper(strings.TrimSpace(id.ControlNumber))
	id.GenerationCode = strings.ToUpper(strings.TrimSpace(id.GenerationCode))
	id.Currency = model.CurrencyUSD
	if id.Environment != model.EnvironmentProduction {
		id.Environment = model.EnvironmentTest
	}
	if id.OperationModel != model.OperationDeferred {
		id.OperationModel = model.OperationNormal
	}
	id.ContingencyNote = strings.TrimSpace(id.ContingencyNote)

	em := &doc.Issuer
	em.TaxID = digitsOnly(em.TaxID)
	em.Registration = digitsOnly(em.Registration)
	em.Name = strings.TrimSpace(em.Name)
	em.ActivityCode = strings.TrimSpace(em.ActivityCode)
	em.ActivityDesc = strings.TrimSpace(em.ActivityDesc)
	em.Address.Department = strings.TrimSpace(em.Address.Department)
	em.Address.Municipality = strings.TrimSpace(em.Address.Municipality)
	em.Address.Complement = strings.TrimSpace(em.Address.Complement)
	em.Phone = strings.TrimSpace(em.Phone)
	em.Email = strings.TrimSpace(em.Email)

	if doc.Recipient != nil {
		r := *doc.Recipient
		r.IDType = strings.TrimSpace(r.IDType)
		r.ID = digitsOnly(r.ID)
		r.Registration = digitsOnly(r.Registration)
		r.Name = strings.TrimSpace(r.Name)
		r.Email = strings.TrimSpace(r.Email)
		doc.Recipient = &r
	}

	items := make([]model.LineItem, len(doc.Items))
	for i, it := range doc.Items {
		it.Code = strings.TrimSpace(it.Code)
		it.Description = strings.TrimSpace(it.Description)
		it.Quantity = money.RoundLine(it.Quantity)
		it.UnitPrice = money.RoundLine(it.UnitPrice)
		it.Discount = money.RoundLine(it.Discount)
		it.Taxed = money.RoundLine(it.Taxed)
		it.Exempt = money.RoundLine(it.Exempt)
		it.NotSubject = money.RoundLine(it.NotSubject)
		it.TaxAmount = money.RoundLine(it.TaxAmount)
		items[i] = it
	}
	doc.Items = items

	sum := &doc.Summary
	sum.TotalTaxed = money.RoundSummary(sum.TotalTaxed)
	sum.TotalExempt = money.RoundSummary(sum.TotalExempt)
	sum.TotalNotSubject = money.RoundSummary(sum.TotalNotSubject)
	sum.TotalDiscount = money.RoundSummary(sum.TotalDiscount)
	sum.GrandTotal = money.RoundSummary(sum.GrandTotal)
	sum.AmountInWords = strings.TrimSpace(sum.AmountInWords)

	taxes := make([]model.TaxSummary, len(sum.Taxes))
	for i, t := range sum.Taxes {
		t.Code = strings.TrimSpace(t.Code)
		t.Description = strings.TrimSpace(t.Description)
		t.Amount = money.RoundSummary(t.Amount)
		taxes[i] = t
	}
	sum.Taxes = taxes

	return doc
}

// digitsOnly strips every non-digit character from an identifier, so
// "0614-123456-001-2" and "06141234560012" normalize identically.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
