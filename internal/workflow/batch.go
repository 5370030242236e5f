package workflow

import (
	"context"
	"fmt"
)

// BatchError records why one document in a batch did not complete.
type BatchError struct {
	Index          int    `json:"index"`
	GenerationCode string `json:"generationCode,omitempty"`
	Message        string `json:"message"`
}

// BatchResult aggregates a batch run. A batch can legitimately end mixed:
// some documents completed and ledger-updated, others failed. There is no
// rollback.
type BatchResult struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Errors    []BatchError `json:"errors,omitempty"`
	Outcomes  []*Outcome   `json:"outcomes,omitempty"`
}

// IngestBatch runs the engine over each submission sequentially. The
// sequencing keeps all ledger writes for a shared period on one writer;
// the store's per-period locks make that discipline explicit rather than
// accidental. Failures are recorded and the batch continues.
func (e *Engine) IngestBatch(ctx context.Context, subs []Submission) (*BatchResult, error) {
	result := &BatchResult{}

	for i, sub := range subs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		out, err := e.Run(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, BatchError{
				Index:          i,
				GenerationCode: sub.Document.Identification.GenerationCode,
				Message:        err.Error(),
			})
			continue
		}

		result.Outcomes = append(result.Outcomes, out)
		if out.Status == StatusCompleted {
			result.Succeeded++
			continue
		}

		result.Failed++
		msg := fmt.Sprintf("terminal status %s", out.Status)
		if out.Failure != nil {
			msg = out.Failure.Error()
		}
		result.Errors = append(result.Errors, BatchError{
			Index:          i,
			GenerationCode: out.Document.Identification.GenerationCode,
			Message:        msg,
		})
	}

	return result, nil
}
