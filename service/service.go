package service

import (
	"context"
	"errors"
	"time"

	"github.com/kevinaaaquil/library/backend/logger"
	"github.com/kevinaaaquil/library/backend/store"
)

// Options are shared by every manager.
type Options struct {
	Log        *logger.Logger
	Now        func() time.Time
	MaxRetries int // read-modify-write attempts before giving up on a version conflict
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = logger.Nop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 1
	}
	return o
}

// withRetry runs one read-modify-write cycle, starting over when the store
// reports that a collection changed underneath it.
func (o Options) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
		if attempt >= o.MaxRetries {
			o.Log.Warn("giving up after version conflicts", "op", op, "attempts", attempt)
			return conflict(ReasonBusy, "the library is busy, please retry")
		}
		o.Log.Debug("version conflict, retrying", "op", op, "attempt", attempt)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
