package extension

import (
	"context"
	"time"
)

// installWithRetry calls install with bounded retries and exponential
// backoff (spec §4.7 step 3). None of the pack's repos pull in a
// third-party retry library as a direct dependency, so this is a small
// stdlib time.Sleep loop - logged as a stdlib justification in
// DESIGN.md.
func installWithRetry(ctx context.Context, attempts int, base time.Duration,
	install func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 3
	}
	var lastErr error
	delay := base
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		lastErr = install(ctx)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}
