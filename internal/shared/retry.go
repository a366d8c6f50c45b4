package shared

import (
	"fmt"
	"time"
)

// RetryOpts configures a [Retry] loop.
type RetryOpts struct {
	MaxAttempts int           // Total attempts including the first (default: 3)
	BaseDelay   time.Duration // Delay before the first retry (default: 100ms)
	Factor      float64       // Exponential backoff multiplier (default: 2)
}

func (o *RetryOpts) defaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 100 * time.Millisecond
	}
	if o.Factor <= 1 {
		o.Factor = 2
	}
}

// Retry runs fn up to opts.MaxAttempts times with exponential backoff between
// attempts, returning nil on the first success.
//
// Used to wrap point operations against the backing store that can fail
// transiently under lock contention.
func Retry(opts RetryOpts, fn func() error) error {
	opts.defaults()

	var err error
	delay := opts.BaseDelay
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < opts.MaxAttempts {
			time.Sleep(delay)
			delay = time.Duration(float64(delay) * opts.Factor)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", opts.MaxAttempts, err)
}
