package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRecord is the persisted form of one monthly ledger.
type LedgerRecord struct {
	Period          string          `gorm:"primaryKey;size:7"`
	GrossIncome     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxedSales      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ExemptSales     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NotSubjectSales decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OutputTax       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxedPurchases  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ExemptPurchases decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	InputTax        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WithheldTax     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	UpdatedAt       time.Time
}

// AppliedDocument marks a generation code as already reflected in a
// ledger, giving at-most-once application per completed document.
type AppliedDocument struct {
	GenerationCode string `gorm:"primaryKey;size:36"`
	Period         string `gorm:"index;size:7"`
	Direction      string `gorm:"size:16"`
	AppliedAt      time.Time
}

// OutcomeRecord archives one terminal workflow outcome. Search and export
// over this table belong to the external history layer.
type OutcomeRecord struct {
	ID             uint   `gorm:"primaryKey"`
	GenerationCode string `gorm:"index;size:36"`
	ControlNumber  string `gorm:"size:40"`
	DocumentType   string `gorm:"size:2"`
	Status         string `gorm:"size:16"`
	Deferred       bool
	ReceiptSeal    string `gorm:"size:64"`
	Envelope       string `gorm:"type:text"`
	Failure        string
	ViolationCount int
	CreatedAt      time.Time
}
