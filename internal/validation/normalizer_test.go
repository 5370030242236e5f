package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/validation"
)

func TestNormalize_Identifiers(t *testing.T) {
	doc := taxedSale()
	doc.Identification.ControlNumber = "  dte-01-00000001-000000000000001 "
	doc.Identification.GenerationCode = "d2966c4e-2d35-4f27-a92d-e7d16b0d2c6f"
	doc.Issuer.TaxID = "0614-123456-789-0"
	doc.Issuer.Registration = "123-4567"

	got := validation.Normalize(doc)

	assert.Equal(t, "DTE-01-00000001-000000000000001", got.Identification.ControlNumber)
	assert.Equal(t, "D2966C4E-2D35-4F27-A92D-E7D16B0D2C6F", got.Identification.GenerationCode)
	assert.Equal(t, "06141234567890", got.Issuer.TaxID)
	assert.Equal(t, "1234567", got.Issuer.Registration)
}

func TestNormalize_ForcesCurrencyAndEnvironment(t *testing.T) {
	doc := taxedSale()
	doc.Identification.Currency = "EUR"
	doc.Identification.Environment = "02"

	got := validation.Normalize(doc)

	assert.Equal(t, model.CurrencyUSD, got.Identification.Currency)
	assert.Equal(t, model.EnvironmentTest, got.Identification.Environment)
}

func TestNormalize_KeepsProductionEnvironment(t *testing.T) {
	doc := taxedSale()
	doc.Identification.Environment = model.EnvironmentProduction

	got := validation.Normalize(doc)

	assert.Equal(t, model.EnvironmentProduction, got.Identification.Environment)
}

func TestNormalize_RoundsScales(t *testing.T) {
	doc := taxedSale()
	doc.Items[0].UnitPrice = decimal.RequireFromString("33.333333339")
	doc.Summary.GrandTotal = decimal.RequireFromString("113.001")

	got := validation.Normalize(doc)

	assert.Equal(t, "33.33333334", got.Items[0].UnitPrice.String())
	assert.Equal(t, "113", got.Summary.GrandTotal.String())
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	doc := taxedSale()
	doc.Recipient = &model.Recipient{ID: "0614-9876", Name: " Cliente "}
	doc.Items[0].Description = "  Servicio  "

	_ = validation.Normalize(doc)

	assert.Equal(t, "0614-9876", doc.Recipient.ID)
	assert.Equal(t, "  Servicio  ", doc.Items[0].Description)
}

func TestNormalize_Recipient(t *testing.T) {
	doc := taxedSale()
	doc.Recipient = &model.Recipient{IDType: " 36 ", ID: "0614-987654-321-0", Name: " Cliente S.A. "}

	got := validation.Normalize(doc)

	require.NotNil(t, got.Recipient)
	assert.Equal(t, "36", got.Recipient.IDType)
	assert.Equal(t, "06149876543210", got.Recipient.ID)
	assert.Equal(t, "Cliente S.A.", got.Recipient.Name)
}
