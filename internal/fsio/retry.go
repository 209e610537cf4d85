package fsio

import (
	"math/rand"
	"time"
)

// Jitter bounds for backoff delays. Randomizing each delay by a factor
// in [1.0, 1.3) keeps concurrently-failing operations from waking up
// in lockstep and hammering an exhausted descriptor table together.
const (
	jitterMin    = 1.0
	jitterSpread = 0.3
)

// Test seams, in the same spirit as the memory store's openDB variable.
var (
	sleep        = time.Sleep
	jitterFactor = func() float64 { return jitterMin + rand.Float64()*jitterSpread }
)

// withRetry runs one native OS call, retrying only transient
// descriptor-exhaustion failures (EMFILE/ENFILE). Everything else is
// returned on first occurrence — retrying cannot fix a missing file or
// a permission error.
//
// The caller invokes this while holding its gate slot, and the backoff
// sleep deliberately happens inside that slot: releasing it would let a
// queued operation immediately throw a fresh syscall at the same
// exhausted resource, defeating the throttle.
func withRetry(op func() error) error {
	cfg := Throttling()

	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return &RetriesExhaustedError{Attempts: attempt + 1, Cause: err}
		}
		sleep(backoffDelay(cfg, attempt))
	}
}

// backoffDelay computes min(BaseDelay * 2^attempt * jitter, MaxDelay)
// for the attempt'th retry (zero-based).
func backoffDelay(cfg ThrottlingConfig, attempt int) time.Duration {
	if attempt > 30 {
		// 2^31 * any positive BaseDelay is past every sane MaxDelay.
		return cfg.MaxDelay
	}
	d := time.Duration(float64(cfg.BaseDelay) * float64(int64(1)<<uint(attempt)) * jitterFactor())
	if d > cfg.MaxDelay || d < 0 {
		d = cfg.MaxDelay
	}
	return d
}
