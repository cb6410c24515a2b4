package worker

import "errors"

// Pool lifecycle and submission errors. Callers distinguish these with
// errors.Is; ErrQueueFull in particular is the backpressure signal that
// submitters are expected to handle (drop, block via SubmitWait, or retry).
var (
	// ErrPoolNotStarted is returned by Submit before Start has run.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolStopped is returned by Submit after Stop has run.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrPoolAlreadyStarted is returned when Start is called twice.
	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrQueueFull is returned by Submit when the work queue is at
	// capacity. Non-fatal: the pool keeps draining and later submits
	// may succeed.
	ErrQueueFull = errors.New("worker pool queue full")

	// ErrNilProcessor is returned by NewPool when no processor
	// function is supplied.
	ErrNilProcessor = errors.New("processor function cannot be nil")

	// ErrStopTimeout is returned by Stop when workers are still busy
	// after the shutdown deadline.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")
)
