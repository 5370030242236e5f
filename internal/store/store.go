// Package store persists monthly ledgers and workflow outcomes. It owns
// the two disciplines the pure accumulator delegates to its caller:
// at-most-once application per generation code, and single-writer-per-
// period serialization of the ledger read-modify-write.
package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/ledger"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/workflow"
)

// Store is a sqlite-backed ledger store and outcome archive.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	mu          sync.Mutex
	periodLocks map[string]*sync.Mutex
}

// Option configures the store.
type Option func(*Store)

// WithStoreLogger sets the logger.
func WithStoreLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (creating if needed) the database at path and migrates the
// schema.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&LedgerRecord{}, &AppliedDocument{}, &OutcomeRecord{}); err != nil {
		return nil, err
	}

	s := &Store{
		db:          db,
		logger:      zap.NewNop(),
		periodLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// periodLock returns the mutex serializing writers for one period.
func (s *Store) periodLock(period string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.periodLocks[period]
	if !ok {
		l = &sync.Mutex{}
		s.periodLocks[period] = l
	}
	return l
}

// Ledger returns the ledger for a period, empty when no document has
// contributed to it yet.
func (s *Store) Ledger(ctx context.Context, period string) (*ledger.Ledger, error) {
	var rec LedgerRecord
	err := s.db.WithContext(ctx).First(&rec, "period = ?", period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l := ledger.New(period)
		return &l, nil
	}
	if err != nil {
		return nil, err
	}
	l := toLedger(rec)
	return &l, nil
}

// ApplyDocument folds a completed document into its monthly ledger.
// Documents already applied (by generation code) are skipped; the current
// snapshot is returned either way.
func (s *Store) ApplyDocument(ctx context.Context, doc model.Document, direction model.FlowDirection) (*ledger.Ledger, error) {
	period := ledger.PeriodOf(doc.Identification.EmittedAt)
	code := doc.Identification.GenerationCode

	lock := s.periodLock(period)
	lock.Lock()
	defer lock.Unlock()

	var result ledger.Ledger
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applied AppliedDocument
		err := tx.First(&applied, "generation_code = ?", code).Error
		if err == nil {
			// Already reflected: leave the ledger untouched.
			s.logger.Debug("skipping already-applied document",
				zap.String("codigoGeneracion", code), zap.String("period", period))
			var rec LedgerRecord
			if err := tx.First(&rec, "period = ?", applied.Period).Error; err != nil {
				return err
			}
			result = toLedger(rec)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var rec LedgerRecord
		err = tx.First(&rec, "period = ?", period).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = LedgerRecord{Period: period}
		} else if err != nil {
			return err
		}

		result = ledger.Apply(toLedger(rec), doc, direction)
		if err := tx.Save(fromLedger(result)).Error; err != nil {
			return err
		}
		return tx.Create(&AppliedDocument{
			GenerationCode: code,
			Period:         period,
			Direction:      string(direction),
			AppliedAt:      result.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordOutcome archives a terminal workflow outcome.
func (s *Store) RecordOutcome(ctx context.Context, out *workflow.Outcome) error {
	rec := OutcomeRecord{
		GenerationCode: out.Document.Identification.GenerationCode,
		ControlNumber:  out.Document.Identification.ControlNumber,
		DocumentType:   string(out.Document.Type()),
		Status:         string(out.Status),
		Deferred:       out.Deferred,
		ReceiptSeal:    out.ReceiptSeal,
		Envelope:       out.Envelope,
		Failure:        out.FailureMsg,
		ViolationCount: len(out.Violations),
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Outcomes lists archived outcomes for a generation code, newest first.
func (s *Store) Outcomes(ctx context.Context, generationCode string) ([]OutcomeRecord, error) {
	var recs []OutcomeRecord
	err := s.db.WithContext(ctx).
		Where("generation_code = ?", generationCode).
		Order("id desc").
		Find(&recs).Error
	return recs, err
}

func toLedger(rec LedgerRecord) ledger.Ledger {
	return ledger.Ledger{
		Period:          rec.Period,
		GrossIncome:     rec.GrossIncome,
		TaxedSales:      rec.TaxedSales,
		ExemptSales:     rec.ExemptSales,
		NotSubjectSales: rec.NotSubjectSales,
		OutputTax:       rec.OutputTax,
		TaxedPurchases:  rec.TaxedPurchases,
		ExemptPurchases: rec.ExemptPurchases,
		InputTax:        rec.InputTax,
		WithheldTax:     rec.WithheldTax,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func fromLedger(l ledger.Ledger) *LedgerRecord {
	return &LedgerRecord{
		Period:          l.Period,
		GrossIncome:     l.GrossIncome,
		TaxedSales:      l.TaxedSales,
		ExemptSales:     l.ExemptSales,
		NotSubjectSales: l.NotSubjectSales,
		OutputTax:       l.OutputTax,
		TaxedPurchases:  l.TaxedPurchases,
		ExemptPurchases: l.ExemptPurchases,
		InputTax:        l.InputTax,
		WithheldTax:     l.WithheldTax,
		UpdatedAt:       l.UpdatedAt,
	}
}
