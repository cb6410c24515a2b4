package match

import "time"

// MatchState is the snapshot handed to an extractor callback at an
// element-evaluation event. It is rebuilt for every invocation; the
// Matched slice is an independent copy and may be retained.
type MatchState[T any] struct {
	// Pos is the absolute position the scan has reached: the position of
	// the item that would be examined next.
	Pos int64

	// Start is the absolute start position of the candidate match.
	Start int64

	// Item is the most recently consumed item. For a zero-width element
	// satisfaction it is the zero value.
	Item T

	// Matched is the sub-sequence consumed by the candidate so far, from
	// Start up to Pos.
	Matched []T

	// Pattern is the owning pattern's name.
	Pattern string

	// ElementIndex is the index of the element being evaluated.
	ElementIndex int

	// ItemsProcessed is the total number of items pushed through the
	// matcher since its creation.
	ItemsProcessed int64

	// Context is the caller-supplied context value, if one was set on the
	// matcher. Extractors needing cross-invocation state should carry it
	// here rather than in closed-over shared variables.
	Context any

	// Timeout is the element's advisory timeout. The engine does not
	// enforce it; extractors may act on it.
	Timeout time.Duration
}

// ExtractorFunc is a registered extractor callback. It is called
// synchronously during the scan and must not block or re-enter the
// matcher it was invoked from. A returned error aborts the current run.
type ExtractorFunc[T any] func(*MatchState[T]) (Action, error)
