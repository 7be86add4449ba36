// Package latency simulates the round-trip delay of a remote backend.
package latency

import (
	"context"
	"time"
)

// Simulate blocks for d unless ctx ends first, returning ctx.Err() in that
// case. A non-positive d only reports whether ctx has already ended.
func Simulate(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
