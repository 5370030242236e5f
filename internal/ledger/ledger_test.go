package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/ledger"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

func saleDoc(docType model.DocumentType, taxed, exempt, notSubject, iva string) model.Document {
	return model.Document{
		Identification: model.Identification{
			Type:      docType,
			EmittedAt: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		},
		Summary: model.Summary{
			TotalTaxed:      decimal.RequireFromString(taxed),
			TotalExempt:     decimal.RequireFromString(exempt),
			TotalNotSubject: decimal.RequireFromString(notSubject),
			Taxes: []model.TaxSummary{
				{Code: model.TaxCodeIVA, Amount: decimal.RequireFromString(iva)},
			},
		},
	}
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, "2026-08", ledger.PeriodOf(time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01", ledger.PeriodOf(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestApply_Emission(t *testing.T) {
	l := ledger.New("2026-08")
	doc := saleDoc(model.TypeConsumerInvoice, "100.00", "20.00", "5.00", "13.00")

	got := ledger.Apply(l, doc, model.DirectionEmission)

	assert.True(t, got.TaxedSales.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, got.ExemptSales.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, got.NotSubjectSales.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, got.GrossIncome.Equal(decimal.RequireFromString("125.00")))
	assert.True(t, got.OutputTax.Equal(decimal.RequireFromString("13.00")))
	assert.True(t, got.TaxedPurchases.IsZero())
	assert.True(t, got.InputTax.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	l := ledger.New("2026-08")
	doc := saleDoc(model.TypeConsumerInvoice, "100.00", "0", "0", "13.00")

	_ = ledger.Apply(l, doc, model.DirectionEmission)

	assert.True(t, l.TaxedSales.IsZero())
	assert.True(t, l.UpdatedAt.IsZero())
}

func TestApply_ReceptionCreditVoucher(t *testing.T) {
	l := ledger.New("2026-08")
	doc := saleDoc(model.TypeTaxCreditVoucher, "200.00", "10.00", "0", "26.00")

	got := ledger.Apply(l, doc, model.DirectionReception)

	assert.True(t, got.TaxedPurchases.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, got.ExemptPurchases.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, got.InputTax.Equal(decimal.RequireFromString("26.00")))
	assert.True(t, got.TaxedSales.IsZero())
	assert.True(t, got.OutputTax.IsZero())
}

func TestApply_ReceptionConsumerInvoiceWithoutTax(t *testing.T) {
	l := ledger.New("2026-08")
	doc := saleDoc(model.TypeConsumerInvoice, "100.00", "0", "0", "0")

	got := ledger.Apply(l, doc, model.DirectionReception)

	// A consumer invoice does not confer tax credit; with no stated tax
	// the purchase is recorded but no input tax accrues.
	assert.True(t, got.TaxedPurchases.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, got.InputTax.IsZero())
}

func TestApply_ReceptionWithholdingReceipt(t *testing.T) {
	l := ledger.New("2026-08")
	doc := saleDoc(model.TypeWithholdingReceipt, "100.00", "0", "0", "13.00")

	got := ledger.Apply(l, doc, model.DirectionReception)

	assert.True(t, got.WithheldTax.Equal(decimal.RequireFromString("13.00")))
	assert.True(t, got.TaxedPurchases.IsZero(), "withholding receipts do not record purchases")
	assert.True(t, got.InputTax.IsZero())
}

func TestApply_IsAdditive(t *testing.T) {
	docs := []model.Document{
		saleDoc(model.TypeConsumerInvoice, "100.00", "0", "0", "13.00"),
		saleDoc(model.TypeConsumerInvoice, "250.00", "50.00", "0", "32.50"),
		saleDoc(model.TypeTaxCreditVoucher, "1000.00", "0", "0", "130.00"),
	}

	l := ledger.New("2026-08")
	for _, doc := range docs {
		l = ledger.Apply(l, doc, model.DirectionEmission)
	}

	require.True(t, l.TaxedSales.Equal(decimal.RequireFromString("1350.00")))
	require.True(t, l.ExemptSales.Equal(decimal.RequireFromString("50.00")))
	require.True(t, l.GrossIncome.Equal(decimal.RequireFromString("1400.00")))
	require.True(t, l.OutputTax.Equal(decimal.RequireFromString("175.50")))
}

func TestApply_OrderIndependentTotals(t *testing.T) {
	a := saleDoc(model.TypeConsumerInvoice, "100.00", "0", "0", "13.00")
	b := saleDoc(model.TypeTaxCreditVoucher, "300.00", "25.00", "0", "39.00")

	forward := ledger.Apply(ledger.Apply(ledger.New("2026-08"), a, model.DirectionEmission), b, model.DirectionEmission)
	reverse := ledger.Apply(ledger.Apply(ledger.New("2026-08"), b, model.DirectionEmission), a, model.DirectionEmission)

	assert.True(t, forward.TaxedSales.Equal(reverse.TaxedSales))
	assert.True(t, forward.GrossIncome.Equal(reverse.GrossIncome))
	assert.True(t, forward.OutputTax.Equal(reverse.OutputTax))
}
