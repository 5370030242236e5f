package validation

import (
	"fmt"
	"strings"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/money"
)

// RecipientIDThreshold is the statutory total at or above which a consumer
// sale must carry recipient identification.
var RecipientIDThreshold = money.MustFromString("1095.00")

// amountInWordsSuffixes are accepted endings for the amount-in-words field.
var amountInWordsSuffixes = []string{"DÓLARES", "DOLARES"}

// businessRule is one cross-field check. Rules inspect the normalized
// document only and do not short-circuit each other.
type businessRule struct {
	code  string
	check func(model.Document) []model.Violation
}

// orderedRules is the fixed evaluation order. All applicable violations
// are collected and returned together.
var orderedRules = []businessRule{
	{model.CodeRecipientID, checkRecipientThreshold},
	{model.CodeItemArithmetic, checkItemArithmetic},
	{model.CodeTotalsMismatch, checkTotalsReconciliation},
	{model.CodeTaxRateMismatch, checkTaxRateConsistency},
	{model.CodeAmountInWords, checkAmountInWordsSuffix},
}

// ApplyRules evaluates every business rule against a normalized document.
func ApplyRules(doc model.Document) []model.Violation {
	var out []model.Violation
	for _, r := range orderedRules {
		out = append(out, r.check(doc)...)
	}
	return out
}

// checkRecipientThreshold enforces the conditional identification rule for
// consumer sales: below the threshold identification must be absent, at or
// above it identification is mandatory.
func checkRecipientThreshold(doc model.Document) []model.Violation {
	if doc.Type() != model.TypeConsumerInvoice {
		return nil
	}

	aboveThreshold := doc.Summary.GrandTotal.GreaterThanOrEqual(RecipientIDThreshold)
	identified := doc.Recipient.Identified()

	switch {
	case aboveThreshold && !identified:
		return []model.Violation{{
			Code:     model.CodeRecipientID,
			Field:    "receptor.numDocumento",
			Severity: model.SeverityBlocking,
			Description: fmt.Sprintf("recipient identification is mandatory for totals of %s or more",
				RecipientIDThreshold.StringFixed(2)),
		}}
	case !aboveThreshold && identified:
		return []model.Violation{{
			Code:     model.CodeRecipientID,
			Field:    "receptor.numDocumento",
			Severity: model.SeverityBlocking,
			Description: fmt.Sprintf("recipient identification must be omitted for totals under %s",
				RecipientIDThreshold.StringFixed(2)),
		}}
	}
	return nil
}

// checkItemArithmetic verifies, per line, that
// unitPrice*quantity - discount equals taxed + exempt + notSubject.
func checkItemArithmetic(doc model.Document) []model.Violation {
	var out []model.Violation
	for i, it := range doc.Items {
		expected := it.UnitPrice.Mul(it.Quantity).Sub(it.Discount)
		actual := it.Taxed.Add(it.Exempt).Add(it.NotSubject)
		if !money.WithinTolerance(expected, actual, money.ItemTolerance) {
			out = append(out, model.Violation{
				Code:     model.CodeItemArithmetic,
				Field:    fmt.Sprintf("cuerpoDocumento[%d]", i),
				Severity: model.SeverityBlocking,
				Description: fmt.Sprintf("line %d: price*qty-discount is %s but category split sums to %s",
					it.Number, expected.StringFixed(2), actual.StringFixed(2)),
			})
		}
	}
	return out
}

// checkTotalsReconciliation verifies each summary category total against
// the sum of the corresponding per-item amounts.
func checkTotalsReconciliation(doc model.Document) []model.Violation {
	taxed, exempt, notSubject := money.Zero, money.Zero, money.Zero
	for _, it := range doc.Items {
		taxed = taxed.Add(it.Taxed)
		exempt = exempt.Add(it.Exempt)
		notSubject = notSubject.Add(it.NotSubject)
	}

	categories := []struct {
		field    string
		declared string
		got      string
		ok       bool
	}{
		{"resumen.totalGravada", doc.Summary.TotalTaxed.StringFixed(2), taxed.StringFixed(2),
			money.WithinTolerance(doc.Summary.TotalTaxed, taxed, money.ItemTolerance)},
		{"resumen.totalExenta", doc.Summary.TotalExempt.StringFixed(2), exempt.StringFixed(2),
			money.WithinTolerance(doc.Summary.TotalExempt, exempt, money.ItemTolerance)},
		{"resumen.totalNoSuj", doc.Summary.TotalNotSubject.StringFixed(2), notSubject.StringFixed(2),
			money.WithinTolerance(doc.Summary.TotalNotSubject, notSubject, money.ItemTolerance)},
	}

	var out []model.Violation
	for _, c := range categories {
		if !c.ok {
			out = append(out, model.Violation{
				Code:        model.CodeTotalsMismatch,
				Field:       c.field,
				Severity:    model.SeverityBlocking,
				Description: fmt.Sprintf("summary declares %s but line items sum to %s", c.declared, c.got),
			})
		}
	}
	return out
}

// checkTaxRateConsistency verifies that the summary IVA equals the
// statutory rate applied to the taxed category total. Zero-rated and
// tax-free document types carry no IVA line and are skipped.
func checkTaxRateConsistency(doc model.Document) []model.Violation {
	switch doc.Type() {
	case model.TypeExportInvoice, model.TypeExcludedSubjectInvoice, model.TypeDonationReceipt:
		return nil
	}

	expected := money.CalculateIVA(doc.Summary.TotalTaxed)
	actual := doc.Summary.TaxAmount(model.TaxCodeIVA)
	if money.WithinTolerance(expected, actual, money.TaxTolerance) {
		return nil
	}
	return []model.Violation{{
		Code:     model.CodeTaxRateMismatch,
		Field:    "resumen.tributos",
		Severity: model.SeverityBlocking,
		Description: fmt.Sprintf("tax for code %s is %s but 13%% of taxed total %s is %s",
			model.TaxCodeIVA, actual.StringFixed(2), doc.Summary.TotalTaxed.StringFixed(2), expected.StringFixed(2)),
	}}
}

// checkAmountInWordsSuffix verifies the currency suffix on the
// amount-in-words field. Advisory: the wording itself is caller-supplied.
func checkAmountInWordsSuffix(doc model.Document) []model.Violation {
	words := strings.ToUpper(doc.Summary.AmountInWords)
	if words == "" {
		return nil // absence is a schema violation, not a rule violation
	}
	for _, suffix := range amountInWordsSuffixes {
		if strings.HasSuffix(words, suffix) {
			return nil
		}
	}
	return []model.Violation{{
		Code:        model.CodeAmountInWords,
		Field:       "resumen.totalLetras",
		Severity:    model.SeverityAdvisory,
		Description: "amount in words should end with the currency name",
	}}
}
