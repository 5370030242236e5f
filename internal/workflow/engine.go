// Package workflow drives a document from submission to a terminal state:
// validation, signing, transmission, contingency fallback and the ledger
// update. The state machine itself is the pure Transition function; the
// Engine executes effects and feeds the resulting events back in.
package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/gateway"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/ledger"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/validation"
)

// DefaultBackoffBase seeds the exponential backoff between transmission
// retries; the authority endpoint has known pacing requirements.
const DefaultBackoffBase = 250 * time.Millisecond

// LedgerStore applies a completed document to its monthly ledger with
// at-most-once semantics per generation code and single-writer-per-period
// discipline, returning the updated snapshot.
type LedgerStore interface {
	ApplyDocument(ctx context.Context, doc model.Document, direction model.FlowDirection) (*ledger.Ledger, error)
}

// HistorySink receives terminal outcomes for archival. Archival, search
// and export live outside the core.
type HistorySink interface {
	RecordOutcome(ctx context.Context, out *Outcome) error
}

// Engine orchestrates workflow runs. Concurrent runs for different
// documents are safe; the ledger store serializes writers per period.
type Engine struct {
	pipeline    *validation.Pipeline
	signer      gateway.Signer
	transmitter gateway.Transmitter
	ledgers     LedgerStore
	history     HistorySink
	logger      *zap.Logger
	backoffBase time.Duration
	now         func() time.Time
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLedgerStore wires the ledger store updated on completion.
func WithLedgerStore(s LedgerStore) EngineOption {
	return func(e *Engine) { e.ledgers = s }
}

// WithHistorySink wires the archive that receives terminal outcomes.
func WithHistorySink(h HistorySink) EngineOption {
	return func(e *Engine) { e.history = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithBackoffBase tunes the retry backoff seed.
func WithBackoffBase(d time.Duration) EngineOption {
	return func(e *Engine) { e.backoffBase = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a workflow engine over the given collaborators.
func NewEngine(pipeline *validation.Pipeline, signer gateway.Signer, transmitter gateway.Transmitter, opts ...EngineOption) *Engine {
	e := &Engine{
		pipeline:    pipeline,
		signer:      signer,
		transmitter: transmitter,
		logger:      zap.NewNop(),
		backoffBase: DefaultBackoffBase,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drives one submission to a terminal state. The returned error is
// non-nil only for cancellation or a ledger-store fault after completion;
// domain failures are reported inside the Outcome. Once a terminal state
// is reached cancellation has no further effect.
func (e *Engine) Run(ctx context.Context, sub Submission) (*Outcome, error) {
	st := newState(sub)
	if st.Document.Identification.GenerationCode == "" {
		st.Document.Identification.GenerationCode = strings.ToUpper(uuid.NewString())
	}

	log := e.logger.With(
		zap.String("codigoGeneracion", st.Document.Identification.GenerationCode),
		zap.String("tipoDte", string(st.Document.Type())),
		zap.String("direction", string(st.Direction)),
	)

	st = Transition(st, EventStart{})

	for !st.Status.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch st.Status {
		case StatusValidating, StatusReceiving:
			doc, violations := e.pipeline.Validate(st.Document, st.Document.Type())
			log.Debug("document validated", zap.Int("violations", len(violations)))
			st = Transition(st, EventValidated{Document: doc, Violations: violations})

		case StatusSigning:
			envelope, err := e.signer.Sign(ctx, gateway.SignRequest{
				IssuerTaxID: st.Document.Issuer.TaxID,
				Credential:  st.Credential,
				Document:    st.Document,
			})
			if err != nil {
				log.Warn("signing failed", zap.Error(err))
				st = Transition(st, EventSignFailed{Err: asSigningError(err)})
				break
			}
			st = Transition(st, EventSigned{Envelope: envelope})

		case StatusTransmitting:
			if st.Retries > 0 {
				if err := e.sleep(ctx, e.backoff(st.Retries)); err != nil {
					return nil, err
				}
			}
			result, err := e.transmitter.Transmit(ctx, st.Envelope, st.Environment)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Warn("transmission failed",
					zap.Int("attempt", st.Retries+1), zap.Error(err))
				st = Transition(st, EventTransmitFailed{Err: asCommunicationError(err)})
				break
			}
			st = Transition(st, EventTransmitted{Result: result})

		case StatusContingency:
			doc := ApplyContingency(st.Document, st.ContingencyReason, e.now())
			log.Info("escalating to contingency issuance",
				zap.Int("reason", int(st.ContingencyReason)))
			st = Transition(st, EventContingencyApplied{Document: doc, Reason: st.ContingencyReason})
		}
	}

	out := e.report(ctx, st, log)
	if st.Status == StatusCompleted && e.ledgers != nil && out.Ledger == nil {
		return out, errors.New("ledger update failed after completion")
	}
	return out, nil
}

// report builds the terminal outcome, applies the ledger update on
// completion, and hands the result to the history sink.
func (e *Engine) report(ctx context.Context, st State, log *zap.Logger) *Outcome {
	out := &Outcome{
		Status:      st.Status,
		Document:    st.Document,
		Violations:  st.Violations,
		Envelope:    st.Envelope,
		ReceiptSeal: st.ReceiptSeal,
		Deferred:    st.Deferred,
		Warnings:    st.Warnings,
		Failure:     st.Failure,
	}
	if st.Failure != nil {
		out.FailureMsg = st.Failure.Error()
	}

	if st.Status == StatusCompleted && e.ledgers != nil {
		snapshot, err := e.ledgers.ApplyDocument(ctx, st.Document, st.Direction)
		if err != nil {
			log.Error("ledger update failed", zap.Error(err))
		} else {
			out.Ledger = snapshot
		}
	}

	if e.history != nil {
		if err := e.history.RecordOutcome(ctx, out); err != nil {
			log.Error("history record failed", zap.Error(err))
		}
	}

	log.Info("workflow finished",
		zap.String("status", string(st.Status)),
		zap.Bool("deferred", st.Deferred),
		zap.Int("retries", st.Retries))

	return out
}

func (e *Engine) backoff(retries int) time.Duration {
	return e.backoffBase << (retries - 1)
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func asSigningError(err error) *model.WorkflowError {
	var wf *model.WorkflowError
	if errors.As(err, &wf) {
		return wf
	}
	return model.NewSigningError("UNKNOWN", "signing failed", err)
}

func asCommunicationError(err error) *model.WorkflowError {
	var wf *model.WorkflowError
	if errors.As(err, &wf) {
		return wf
	}
	return model.NewCommunicationError("transmission failed", err)
}
