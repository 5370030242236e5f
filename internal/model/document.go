package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType is the authority-assigned two-digit code that selects the
// schema and fiscal treatment of a document.
type DocumentType string

const (
	TypeConsumerInvoice        DocumentType = "01"
	TypeTaxCreditVoucher       DocumentType = "03"
	TypeRemissionNote          DocumentType = "04"
	TypeCreditNote             DocumentType = "05"
	TypeDebitNote              DocumentType = "06"
	TypeWithholdingReceipt     DocumentType = "07"
	TypeLiquidationVoucher     DocumentType = "08"
	TypeExportInvoice          DocumentType = "11"
	TypeExcludedSubjectInvoice DocumentType = "14"
	TypeDonationReceipt        DocumentType = "15"
)

// ContingencyEligible reports whether the type may be issued in deferred
// mode when the authority is unreachable.
func (t DocumentType) ContingencyEligible() bool {
	switch t {
	case TypeConsumerInvoice, TypeTaxCreditVoucher, TypeRemissionNote,
		TypeCreditNote, TypeDebitNote, TypeExportInvoice, TypeExcludedSubjectInvoice:
		return true
	}
	return false
}

// ConfersTaxCredit reports whether a received document of this type grants
// a deductible input-tax credit.
func (t DocumentType) ConfersTaxCredit() bool {
	switch t {
	case TypeTaxCreditVoucher, TypeDebitNote:
		return true
	}
	return false
}

// Environment selects the authority endpoint a document is destined for.
type Environment string

const (
	EnvironmentTest       Environment = "00"
	EnvironmentProduction Environment = "01"
)

// OperationModel distinguishes normal online issuance from deferred
// (contingency) issuance.
type OperationModel int

const (
	OperationNormal   OperationModel = 1
	OperationDeferred OperationModel = 2
)

// ContingencyReason is the statutory code explaining a deferred issuance.
type ContingencyReason int

const (
	ContingencyAuthorityUnavailable ContingencyReason = 1
	ContingencyIssuerUnavailable    ContingencyReason = 2
	ContingencyConnectivityFailure  ContingencyReason = 3
	ContingencyPowerFailure         ContingencyReason = 4
	ContingencyOther                ContingencyReason = 5
)

// FlowDirection states whether the caller issued the document or received
// a counterparty's document.
type FlowDirection string

const (
	DirectionEmission  FlowDirection = "emission"
	DirectionReception FlowDirection = "reception"
)

// CurrencyUSD is the only currency the mandate admits.
const CurrencyUSD = "USD"

// TaxCodeIVA identifies the 13% value-added tax in summary tax lines.
const TaxCodeIVA = "20"

// Identification carries the header fields that identify one document.
// JSON tags follow the authority's wire naming; this struct doubles as the
// adapter at the boundary to the loosely-typed external API.
type Identification struct {
	Version           int               `json:"version"`
	Environment       Environment       `json:"ambiente"`
	Type              DocumentType      `json:"tipoDte"`
	ControlNumber     string            `json:"numeroControl"`
	GenerationCode    string            `json:"codigoGeneracion"`
	OperationModel    OperationModel    `json:"tipoModelo"`
	ContingencyReason ContingencyReason `json:"tipoContingencia,omitempty"`
	ContingencyNote   string            `json:"motivoContin,omitempty"`
	EmittedAt         time.Time         `json:"fecEmi"`
	Currency          string            `json:"tipoMoneda"`
}

// Address locates a party.
type Address struct {
	Department   string `json:"departamento"`
	Municipality string `json:"municipio"`
	Complement   string `json:"complemento"`
}

// Issuer is the party emitting the document.
type Issuer struct {
	TaxID        string  `json:"nit"`
	Registration string  `json:"nrc"`
	Name         string  `json:"nombre"`
	ActivityCode string  `json:"codActividad"`
	ActivityDesc string  `json:"descActividad"`
	Address      Address `json:"direccion"`
	Phone        string  `json:"telefono,omitempty"`
	Email        string  `json:"correo,omitempty"`
}

// Recipient is the counterparty. It may be entirely absent for small
// consumer sales; identification fields may be empty even when present.
type Recipient struct {
	IDType       string `json:"tipoDocumento,omitempty"`
	ID           string `json:"numDocumento,omitempty"`
	Registration string `json:"nrc,omitempty"`
	Name         string `json:"nombre,omitempty"`
	Email        string `json:"correo,omitempty"`
}

// Identified reports whether the recipient carries a usable identifier.
func (r *Recipient) Identified() bool {
	return r != nil && r.ID != ""
}

// LineItem is one sale line. The sale amount is split across the three
// mutually exclusive tax-treatment categories.
type LineItem struct {
	Number      int             `json:"numItem"`
	Code        string          `json:"codigo,omitempty"`
	Description string          `json:"descripcion"`
	Quantity    decimal.Decimal `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precioUni"`
	Discount    decimal.Decimal `json:"montoDescu"`
	Taxed       decimal.Decimal `json:"ventaGravada"`
	Exempt      decimal.Decimal `json:"ventaExenta"`
	NotSubject  decimal.Decimal `json:"ventaNoSuj"`
	TaxAmount   decimal.Decimal `json:"ivaItem"`
}

// TaxSummary is one aggregated tax line in the summary, keyed by tax code.
type TaxSummary struct {
	Code        string          `json:"codigo"`
	Description string          `json:"descripcion"`
	Amount      decimal.Decimal `json:"valor"`
}

// Summary aggregates totals for the whole document.
type Summary struct {
	TotalTaxed      decimal.Decimal `json:"totalGravada"`
	TotalExempt     decimal.Decimal `json:"totalExenta"`
	TotalNotSubject decimal.Decimal `json:"totalNoSuj"`
	TotalDiscount   decimal.Decimal `json:"totalDescu"`
	Taxes           []TaxSummary    `json:"tributos,omitempty"`
	GrandTotal      decimal.Decimal `json:"montoTotalOperacion"`
	AmountInWords   string          `json:"totalLetras"`
	Condition       int             `json:"condicionOperacion,omitempty"`
}

// TaxAmount returns the summary amount for the given tax code, zero when
// the code is not present.
func (s Summary) TaxAmount(code string) decimal.Decimal {
	for _, t := range s.Taxes {
		if t.Code == code {
			return t.Amount
		}
	}
	return decimal.Zero
}

// Document is a complete electronic tax document.
type Document struct {
	Identification Identification `json:"identificacion"`
	Issuer         Issuer         `json:"emisor"`
	Recipient      *Recipient     `json:"receptor,omitempty"`
	Items          []LineItem     `json:"cuerpoDocumento"`
	Summary        Summary        `json:"resumen"`
}

// Type is shorthand for the document's type code.
func (d Document) Type() DocumentType {
	return d.Identification.Type
}

// Deferred reports whether the document was issued under the contingency
// operation model.
func (d Document) Deferred() bool {
	return d.Identification.OperationModel == OperationDeferred
}
