/*
compensate.go - Paired mutation with compensating rollback

PURPOSE:
  The ledger's operations (and admin user creation) share one failure shape:
  write A has committed, dependent write B fails, and A must be undone before
  the error is surfaced. This file implements that pairing once.

FAILURE SEMANTICS:
  - commit succeeds            -> nil
  - commit fails, undo succeeds -> the commit error, state fully restored
  - commit fails, undo fails    -> *CompensationError carrying both errors

RETRY POLICY:
  The primary write is never retried. The compensating write is retried up
  to compensationAttempts times, because leaving stock inconsistent is worse
  than a brief retry loop.
*/
package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// compensationAttempts bounds retries of the compensating write.
const compensationAttempts = 3

// compensationBackoff is the pause between rollback attempts.
const compensationBackoff = 50 * time.Millisecond

// Compensate runs commit; on failure it runs undo until it succeeds or the
// attempt budget is exhausted. The caller's already-applied first write is
// what undo reverses.
func Compensate(ctx context.Context, log *zap.Logger, op string, commit, undo func(context.Context) error) error {
	err := commit(ctx)
	if err == nil {
		return nil
	}

	log.Warn("dependent write failed, compensating",
		zap.String("op", op),
		zap.Error(err),
	)

	var undoErr error
	for attempt := 1; attempt <= compensationAttempts; attempt++ {
		undoErr = undo(ctx)
		if undoErr == nil {
			return err
		}
		log.Error("compensating write failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(undoErr),
		)
		if attempt < compensationAttempts {
			select {
			case <-time.After(compensationBackoff):
			case <-ctx.Done():
				return &CompensationError{Op: op, Cause: err, RollbackErr: ctx.Err()}
			}
		}
	}

	return &CompensationError{Op: op, Cause: err, RollbackErr: undoErr}
}
