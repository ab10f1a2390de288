package infra

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards calls to the accounting endpoint (Closed → Open → Half-Open).
//
// States:
//   - Closed:    normal operation, calls pass through
//   - Open:      every call fails fast with ErrCircuitOpen
//   - Half-Open: a single probe is let through; the rest fail fast

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // normal, calls flow
	CBOpen                    // tripped, fast-fail
	CBHalfOpen                // probing
)

// String returns a human-readable state name (for health endpoints / logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is refused by the breaker.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tunable parameters.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open (default: 5)
	SuccessThreshold int           // consecutive probe successes to close (default: 2)
	OpenTimeout      time.Duration // time spent open before probing (default: 30s)
	// OnStateChange, when set, is called after every transition, outside the lock.
	OnStateChange func(from, to CBState)
}

// DefaultCBConfig returns the defaults used for the accounting endpoint.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         CBState
	failures      int
	successes     int
	openedAt      time.Time
	probeInFlight bool

	cfg CircuitBreakerConfig
	now func() time.Time
}

// NewCircuitBreaker creates a CB in Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{state: CBClosed, cfg: cfg, now: time.Now}
}

// State returns the current state, moving Open to Half-Open once the timeout
// has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	from, to := cb.refreshLocked()
	state := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)
	return state
}

// Execute runs fn through the breaker. Context cancellation by the caller is
// not counted as a failure of the downstream.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	cb.mu.Lock()
	from, to := cb.refreshLocked()
	switch cb.state {
	case CBOpen:
		cb.mu.Unlock()
		cb.notify(from, to)
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.probeInFlight {
			cb.mu.Unlock()
			cb.notify(from, to)
			return ErrCircuitOpen
		}
		cb.probeInFlight = true
	}
	cb.mu.Unlock()
	cb.notify(from, to)

	err := fn(ctx)

	cb.mu.Lock()
	cb.probeInFlight = false
	if err != nil && ctx.Err() == nil {
		from, to = cb.onFailureLocked()
	} else if err == nil {
		from, to = cb.onSuccessLocked()
	} else {
		from, to = cb.state, cb.state
	}
	cb.mu.Unlock()
	cb.notify(from, to)
	return err
}

func (cb *CircuitBreaker) notify(from, to CBState) {
	if from != to && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(from, to)
	}
}

// must be called under lock
func (cb *CircuitBreaker) refreshLocked() (CBState, CBState) {
	from := cb.state
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return from, cb.state
}

// must be called under lock
func (cb *CircuitBreaker) onFailureLocked() (CBState, CBState) {
	from := cb.state
	cb.failures++
	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case CBHalfOpen:
		cb.trip()
	}
	return from, cb.state
}

// must be called under lock
func (cb *CircuitBreaker) onSuccessLocked() (CBState, CBState) {
	from := cb.state
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
	return from, cb.state
}

func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = cb.now()
	cb.failures = 0
	cb.successes = 0
}
