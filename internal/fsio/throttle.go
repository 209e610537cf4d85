package fsio

import (
	"fmt"
	"sync"
	"time"
)

// Throttling defaults. 100 concurrent OS calls stays comfortably below
// the usual 1024 soft descriptor limit while leaving headroom for the
// SQLite index and the MCP transport.
const (
	DefaultMaxConcurrency = 100
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = 100 * time.Millisecond
	DefaultMaxDelay       = 5 * time.Second
)

// ThrottlingConfig holds the process-wide tuning parameters for the
// I/O layer. Read it through Throttling() and change it through
// Configure() — the returned value is always a snapshot copy, so
// callers can never mutate live state through it.
type ThrottlingConfig struct {
	// MaxConcurrency bounds how many OS calls may be in flight at once.
	MaxConcurrency int
	// MaxRetries is how many times a transient failure is retried
	// after the initial attempt.
	MaxRetries int
	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
}

// ThrottlingUpdate is a partial update for Configure. Nil fields keep
// their current value (merge, not replace).
type ThrottlingUpdate struct {
	MaxConcurrency *int
	MaxRetries     *int
	BaseDelay      *time.Duration
	MaxDelay       *time.Duration
}

// registry is the process-wide configuration singleton. Every call
// site reads it, startup code and tests write it. Guarded by a mutex
// so concurrent facade calls always see a consistent struct; the
// semantics are last-writer-wins.
var registry = struct {
	mu  sync.Mutex
	cfg ThrottlingConfig
}{
	cfg: defaultThrottling(),
}

func defaultThrottling() ThrottlingConfig {
	return ThrottlingConfig{
		MaxConcurrency: DefaultMaxConcurrency,
		MaxRetries:     DefaultMaxRetries,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
	}
}

// Throttling returns a snapshot of the current configuration.
func Throttling() ThrottlingConfig {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.cfg
}

// Configure merges the provided fields into the live configuration.
// An update that would violate the constraints (MaxConcurrency >= 1,
// MaxRetries >= 0, 0 < BaseDelay <= MaxDelay) is rejected as a whole
// and the previous configuration is retained unchanged.
//
// A MaxConcurrency change affects only future admission decisions:
// operations already holding a slot are never preempted.
func Configure(u ThrottlingUpdate) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	merged := registry.cfg
	if u.MaxConcurrency != nil {
		merged.MaxConcurrency = *u.MaxConcurrency
	}
	if u.MaxRetries != nil {
		merged.MaxRetries = *u.MaxRetries
	}
	if u.BaseDelay != nil {
		merged.BaseDelay = *u.BaseDelay
	}
	if u.MaxDelay != nil {
		merged.MaxDelay = *u.MaxDelay
	}

	if err := merged.validate(); err != nil {
		return err
	}

	registry.cfg = merged
	return nil
}

// ResetThrottling restores the default configuration. Tests call this
// between cases; the registry is shared process state.
func ResetThrottling() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.cfg = defaultThrottling()
}

func (c ThrottlingConfig) validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("fsio: max concurrency must be >= 1, got %d", c.MaxConcurrency)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("fsio: max retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("fsio: base delay must be > 0, got %v", c.BaseDelay)
	}
	if c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("fsio: max delay %v must be >= base delay %v", c.MaxDelay, c.BaseDelay)
	}
	return nil
}

// PendingOperations returns the number of operations currently waiting
// for an admission slot. Zero whenever no caller is blocked.
func PendingOperations() int {
	return sharedGate.pending()
}

// ActiveOperations returns the number of operations currently holding
// an admission slot. Never exceeds MaxConcurrency.
func ActiveOperations() int {
	return sharedGate.activeCount()
}
