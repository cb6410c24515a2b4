// Package window provides a bounded scrolling window over a sequence of
// items, each tagged with a monotonically increasing absolute position.
//
// The window is the substrate the match engine reads from: items enter via
// Push, the oldest item is evicted once capacity is exceeded, and absolute
// positions never reset. The zero-capacity window is legal and simply
// retains nothing.
//
// Unlike a general-purpose ring buffer, the window has a single fixed
// policy: append at the back, evict from the front. It carries no internal
// locking because it is exclusively owned by its matcher; statistics
// counters remain atomic so monitoring goroutines can read them without
// tearing.
//
// Basic usage:
//
//	w, err := window.New[int](64)
//	if err != nil {
//		return err
//	}
//	w.Push(42)
//	items := w.Items()          // copy, position order
//	start := w.Start()          // oldest retained absolute position
//	end := w.End()              // next position to assign
//
// Statistics are always collected:
//
//	summary := w.Stats().Summary()
package window
