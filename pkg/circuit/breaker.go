// Package circuit implements a circuit breaker for calls to remote services
package circuit

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the function while the breaker is open
var ErrOpen = errors.New("circuit breaker is open")

// State represents the state of a circuit breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds configuration for a breaker
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int
	// SuccessThreshold is the number of half-open successes that closes it again
	SuccessThreshold int
	// Timeout is how long the circuit stays open before probing
	Timeout time.Duration
	// MaxRequests caps the probes let through while half-open
	MaxRequests int
	// OnStateChange is called with the lock held; it must not call back into the breaker
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns the configuration used by the API client
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		MaxRequests:      3,
	}
}

// Stats holds counters about breaker operations
type Stats struct {
	TotalRequests        int64 `json:"total_requests"`
	TotalSuccesses       int64 `json:"total_successes"`
	TotalFailures        int64 `json:"total_failures"`
	TotalRejections      int64 `json:"total_rejections"`
	ConsecutiveFailures  int   `json:"consecutive_failures"`
	ConsecutiveSuccesses int   `json:"consecutive_successes"`
}

// Breaker implements the circuit breaker pattern. The guarded function runs
// outside the lock so concurrent callers are not serialised.
type Breaker struct {
	name        string
	config      Config
	now         func() time.Time
	mu          sync.Mutex
	state       State
	stats       Stats
	probes      int
	nextAttempt time.Time
}

// New creates a breaker; zero config fields take DefaultConfig values
func New(name string, config Config) *Breaker {
	def := DefaultConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = def.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxRequests <= 0 {
		config.MaxRequests = def.MaxRequests
	}
	return &Breaker{name: name, config: config, now: time.Now}
}

// Execute runs fn unless the circuit is open. A non-nil error from fn
// counts as a failure.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err == nil)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.TotalRequests++
	switch b.state {
	case StateOpen:
		if b.now().Before(b.nextAttempt) {
			b.stats.TotalRejections++
			return ErrOpen
		}
		b.setState(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if b.probes >= b.config.MaxRequests {
			b.stats.TotalRejections++
			return ErrOpen
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.stats.TotalSuccesses++
		b.stats.ConsecutiveFailures = 0
		b.stats.ConsecutiveSuccesses++
		if b.state == StateHalfOpen && b.stats.ConsecutiveSuccesses >= b.config.SuccessThreshold {
			b.setState(StateClosed)
		}
		return
	}

	b.stats.TotalFailures++
	b.stats.ConsecutiveSuccesses = 0
	b.stats.ConsecutiveFailures++
	switch b.state {
	case StateClosed:
		if b.stats.ConsecutiveFailures >= b.config.FailureThreshold {
			b.setState(StateOpen)
		}
	case StateHalfOpen:
		b.setState(StateOpen)
	}
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	from := b.state
	b.state = state

	switch state {
	case StateOpen:
		b.nextAttempt = b.now().Add(b.config.Timeout)
	case StateHalfOpen:
		b.probes = 0
		b.stats.ConsecutiveSuccesses = 0
	case StateClosed:
		b.stats.ConsecutiveFailures = 0
		b.stats.ConsecutiveSuccesses = 0
	}

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.name, from, state)
	}
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a copy of the counters
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Reset closes the circuit and clears the counters
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setState(StateClosed)
	b.stats = Stats{}
	b.probes = 0
	b.nextAttempt = time.Time{}
}
