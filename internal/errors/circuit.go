package errors

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is the sentinel wrapped by the error returned while the
// circuit is open. Match it with errors.Is.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the circuit breaker state.
type State int

const (
	// StateClosed admits every request.
	StateClosed State = iota
	// StateOpen rejects requests until the reset timeout has passed.
	StateOpen
	// StateHalfOpen admits a single trial request after the timeout.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast when a search backend keeps erroring instead
// of letting every request wait out a full timeout. maxFailures
// consecutive failures open the circuit; after resetTimeout one trial
// request decides between closing it again and re-opening.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.RWMutex
	state       State
	failures    int
	lastFailure time.Time
}

// CircuitBreakerOption configures a CircuitBreaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithMaxFailures sets how many consecutive failures open the circuit.
func WithMaxFailures(n int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.maxFailures = n
	}
}

// WithResetTimeout sets how long the circuit stays open before a trial.
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		cb.resetTimeout = d
	}
}

// NewCircuitBreaker returns a closed breaker named after the backend it
// guards. Defaults: 5 failures, 30 second reset timeout.
func NewCircuitBreaker(name string, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Name returns the breaker's name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state, surfacing half-open once the reset
// timeout has elapsed on an open circuit.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.effectiveState()
}

// effectiveState folds the reset timeout into the stored state. Callers
// must hold at least a read lock.
func (cb *CircuitBreaker) effectiveState() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) > cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Failures returns the consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}

// Allow reports whether a request may proceed right now.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.effectiveState() != StateOpen
}

// RecordSuccess resets the failure count and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = StateClosed
}

// RecordFailure counts a failure, opening the circuit at maxFailures.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = time.Now()
	if cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
}

// admit gates a request. It returns the state the request runs under, or
// the open-circuit error when nothing may run.
func (cb *CircuitBreaker) admit() (State, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.effectiveState()
	switch state {
	case StateOpen:
		return state, New(ErrCodeIndexUnavailable, cb.name+" backend unavailable", ErrCircuitOpen).
			WithSuggestion("Check that the search backend is reachable and retry")
	case StateHalfOpen:
		cb.state = StateHalfOpen
	}
	return state, nil
}

// settle records the outcome of a request admitted under state.
func (cb *CircuitBreaker) settle(state State, err error) {
	if err == nil {
		cb.RecordSuccess()
		return
	}
	if state == StateHalfOpen {
		// The trial failed; the backend is still down.
		cb.mu.Lock()
		cb.state = StateOpen
		cb.lastFailure = time.Now()
		cb.mu.Unlock()
		return
	}
	cb.RecordFailure()
}

// Execute runs fn through the breaker. While the circuit is open it
// returns an ERR_302_INDEX_UNAVAILABLE error (wrapping ErrCircuitOpen)
// without calling fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	_, err := CircuitExecuteWithResult(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// CircuitExecuteWithResult is Execute for functions returning a value.
func CircuitExecuteWithResult[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	state, err := cb.admit()
	if err != nil {
		var zero T
		return zero, err
	}

	result, err := fn()
	cb.settle(state, err)
	return result, err
}
