package window

import (
	"fmt"

	"github.com/c360/seqmatch/errors"
)

// Window is a bounded, append-only-with-eviction sequence of the most
// recent items. Every pushed item is assigned a monotonically increasing
// absolute position that does not reset when older items are evicted.
//
// Window is not safe for concurrent use. It is designed to be exclusively
// owned by a single matcher instance.
type Window[T any] struct {
	items    []T
	capacity int
	head     int   // ring index of the oldest retained item
	size     int
	next     int64 // absolute position of the next item to push

	stats   *Statistics
	evictFn EvictCallback[T]
}

// EvictCallback is invoked for each item removed from the front of the
// window, with the item's absolute position.
type EvictCallback[T any] func(item T, pos int64)

// New creates a window with the given capacity. A zero capacity is legal
// and means nothing is retained; a negative capacity is a configuration
// error.
func New[T any](capacity int, opts ...Option[T]) (*Window[T], error) {
	if capacity < 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("capacity %d: %w", capacity, errors.ErrInvalidConfig),
			"Window", "New", "validate capacity")
	}

	options := applyOptions(opts...)

	w := &Window[T]{
		capacity: capacity,
		stats:    NewStatistics(),
		evictFn:  options.evictCallback,
	}
	if capacity > 0 {
		w.items = make([]T, capacity)
	}
	return w, nil
}

// Push appends one item, evicting the oldest when capacity is exceeded,
// and advances the absolute position counter. It reports the evicted item,
// if any. Push never fails; pushing into a zero-capacity window assigns a
// position and immediately discards the item.
func (w *Window[T]) Push(item T) (evicted T, wasEvicted bool) {
	pos := w.next
	w.next++
	w.stats.Push()

	if w.capacity == 0 {
		w.stats.Evict()
		if w.evictFn != nil {
			w.evictFn(item, pos)
		}
		return item, true
	}

	if w.size == w.capacity {
		evicted = w.items[w.head]
		evictedPos := w.next - 1 - int64(w.size)
		var zero T
		w.items[w.head] = zero
		w.head = (w.head + 1) % w.capacity
		w.size--
		wasEvicted = true

		w.stats.Evict()
		if w.evictFn != nil {
			w.evictFn(evicted, evictedPos)
		}
	}

	w.items[(w.head+w.size)%w.capacity] = item
	w.size++
	w.stats.UpdateLen(int64(w.size))

	return evicted, wasEvicted
}

// Len returns the number of currently retained items.
func (w *Window[T]) Len() int {
	return w.size
}

// Cap returns the window capacity.
func (w *Window[T]) Cap() int {
	return w.capacity
}

// Start returns the absolute position of the oldest retained item. For an
// empty window it equals End.
func (w *Window[T]) Start() int64 {
	return w.next - int64(w.size)
}

// End returns the absolute position that will be assigned to the next
// pushed item, which equals the total number of items ever pushed.
func (w *Window[T]) End() int64 {
	return w.next
}

// At returns the item at the given absolute position. It reports false
// when the position is outside the retained range.
func (w *Window[T]) At(pos int64) (T, bool) {
	var zero T
	if pos < w.Start() || pos >= w.End() {
		return zero, false
	}
	offset := int(pos - w.Start())
	return w.items[(w.head+offset)%w.capacity], true
}

// Items returns a copy of the retained items in position order.
func (w *Window[T]) Items() []T {
	out := make([]T, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.items[(w.head+i)%w.capacity]
	}
	return out
}

// SliceRange returns a copy of the items covering the absolute position
// range [from, to). Positions outside the retained range are clamped.
func (w *Window[T]) SliceRange(from, to int64) []T {
	if from < w.Start() {
		from = w.Start()
	}
	if to > w.End() {
		to = w.End()
	}
	if from >= to {
		return nil
	}
	out := make([]T, to-from)
	for i := range out {
		offset := int(from - w.Start()) + i
		out[i] = w.items[(w.head+offset)%w.capacity]
	}
	return out
}

// Clear removes all retained items. The absolute position counter is not
// reset: new items continue from where the sequence left off.
func (w *Window[T]) Clear() {
	var zero T
	for i := 0; i < w.size; i++ {
		w.items[(w.head+i)%w.capacity] = zero
	}
	w.head = 0
	w.size = 0
	w.stats.UpdateLen(0)
}

// Reset clears the window and rewinds the absolute position counter to
// zero, as if the window had just been created. Statistics are reset too.
func (w *Window[T]) Reset() {
	w.Clear()
	w.next = 0
	w.stats.Reset()
}

// Grow raises the capacity to the given value. The window never shrinks:
// a capacity below the current one is a configuration error.
func (w *Window[T]) Grow(capacity int) error {
	if capacity < w.capacity {
		return errors.WrapInvalid(
			fmt.Errorf("capacity %d below current %d: %w", capacity, w.capacity, errors.ErrInvalidConfig),
			"Window", "Grow", "validate capacity")
	}
	if capacity == w.capacity {
		return nil
	}

	items := make([]T, capacity)
	for i := 0; i < w.size; i++ {
		items[i] = w.items[(w.head+i)%w.capacity]
	}
	w.items = items
	w.capacity = capacity
	w.head = 0
	return nil
}

// Stats returns the window statistics, always available for observability.
func (w *Window[T]) Stats() *Statistics {
	return w.stats
}
