// Package dtelib is the public API for embedding the electronic tax
// document engine: validation, workflow orchestration and the monthly
// tax ledger.
//
// Example usage:
//
//	pipeline := dtelib.NewPipeline()
//	normalized, violations := pipeline.Validate(doc, doc.Type())
//	if dtelib.HasBlocking(violations) {
//	    log.Fatal(violations)
//	}
package dtelib

import (
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/gateway"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/ledger"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/validation"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/workflow"
)

// Re-export core document types.
type (
	Document       = model.Document
	Identification = model.Identification
	Issuer         = model.Issuer
	Recipient      = model.Recipient
	LineItem       = model.LineItem
	Summary        = model.Summary
	TaxSummary     = model.TaxSummary
	DocumentType   = model.DocumentType
	Environment    = model.Environment
	FlowDirection  = model.FlowDirection
	Violation      = model.Violation
	WorkflowError  = model.WorkflowError
)

// Re-export document type codes.
const (
	TypeConsumerInvoice        = model.TypeConsumerInvoice
	TypeTaxCreditVoucher       = model.TypeTaxCreditVoucher
	TypeRemissionNote          = model.TypeRemissionNote
	TypeCreditNote             = model.TypeCreditNote
	TypeDebitNote              = model.TypeDebitNote
	TypeWithholdingReceipt     = model.TypeWithholdingReceipt
	TypeExportInvoice          = model.TypeExportInvoice
	TypeExcludedSubjectInvoice = model.TypeExcludedSubjectInvoice
)

// Re-export flow directions and environments.
const (
	DirectionEmission  = model.DirectionEmission
	DirectionReception = model.DirectionReception

	EnvironmentTest       = model.EnvironmentTest
	EnvironmentProduction = model.EnvironmentProduction
)

// Re-export validation entry points.
type Pipeline = validation.Pipeline

var (
	NewPipeline = validation.NewPipeline
	Normalize   = validation.Normalize
	HasBlocking = model.HasBlocking
)

// Re-export workflow types.
type (
	Engine     = workflow.Engine
	Submission = workflow.Submission
	Outcome    = workflow.Outcome
	Status     = workflow.Status
)

var NewEngine = workflow.NewEngine

// Re-export gateway contracts for custom adapters.
type (
	Signer         = gateway.Signer
	Transmitter    = gateway.Transmitter
	SignRequest    = gateway.SignRequest
	TransmitResult = gateway.TransmitResult
)

// Re-export the ledger accumulator.
type Ledger = ledger.Ledger

var (
	ApplyToLedger = ledger.Apply
	PeriodOf      = ledger.PeriodOf
)
