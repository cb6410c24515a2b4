package window

// Option configures window behavior using the functional options pattern.
type Option[T any] func(*windowOptions[T])

// windowOptions holds internal configuration for window instances.
// Statistics are always collected and are not an option.
type windowOptions[T any] struct {
	evictCallback EvictCallback[T]
}

// WithEvictCallback sets a callback invoked for each item evicted from the
// front of the window.
func WithEvictCallback[T any](callback EvictCallback[T]) Option[T] {
	return func(opts *windowOptions[T]) {
		opts.evictCallback = callback
	}
}

func applyOptions[T any](options ...Option[T]) *windowOptions[T] {
	opts := &windowOptions[T]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
