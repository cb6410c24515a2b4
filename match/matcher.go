package match

import (
	"fmt"
	"log/slog"

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/metric"
	"github.com/c360/seqmatch/pattern"
	"github.com/c360/seqmatch/window"
)

// Matcher is the sequence-pattern-matching engine: a scrolling window of
// items, an active pattern set, and an extractor registry, behind batch
// and streaming entry points that share one scan core.
//
// A Matcher is not safe for concurrent use. It may be moved between
// goroutines between calls; concurrent calls into one instance require
// external synchronization by the caller.
type Matcher[T any] struct {
	window     *window.Window[T]
	patterns   []pattern.Pattern[T]
	extractors map[int]ExtractorFunc[T]
	context    any
	logger     *slog.Logger
	metrics    *matcherMetrics

	itemsProcessed int64

	// scanFloor is the absolute position streaming candidate starts may
	// not precede; Skip/Jump/Restart actions advance or re-seed it.
	scanFloor int64

	// stream is the persistent overlap/dedup state for the streaming
	// entry points, pruned as the window slides.
	stream *resolver
}

// Option configures a Matcher at construction.
type Option[T any] func(*Matcher[T]) error

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(m *Matcher[T]) error {
		if logger != nil {
			m.logger = logger
		}
		return nil
	}
}

// WithMetrics enables Prometheus metrics for this matcher, labeled with
// the given name.
func WithMetrics[T any](registry *metric.MetricsRegistry, name string) Option[T] {
	return func(m *Matcher[T]) error {
		if registry == nil {
			return nil
		}
		metrics, err := newMatcherMetrics(registry, name)
		if err != nil {
			return err
		}
		m.metrics = metrics
		return nil
	}
}

// WithPatterns registers the given patterns during construction, with the
// same validation as AddPattern.
func WithPatterns[T any](patterns ...pattern.Pattern[T]) Option[T] {
	return func(m *Matcher[T]) error {
		for _, p := range patterns {
			if err := m.AddPattern(p); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithContext sets the caller context value threaded into MatchState.
func WithContext[T any](ctx any) Option[T] {
	return func(m *Matcher[T]) error {
		m.context = ctx
		return nil
	}
}

// New creates a matcher over a scrolling window with the given capacity.
func New[T any](windowCapacity int, opts ...Option[T]) (*Matcher[T], error) {
	w, err := window.New[T](windowCapacity)
	if err != nil {
		return nil, err
	}

	m := &Matcher[T]{
		window:     w,
		extractors: make(map[int]ExtractorFunc[T]),
		logger:     slog.Default(),
		stream:     newResolver(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddPattern validates p, including reference resolution and cycle
// detection against the active set, and admits it. A pattern with the
// same name replaces the existing one.
func (m *Matcher[T]) AddPattern(p pattern.Pattern[T]) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := checkReferences(p, m.patterns); err != nil {
		return err
	}

	for i := range m.patterns {
		if m.patterns[i].Name == p.Name {
			m.patterns[i] = p
			m.logger.Debug("pattern replaced", "pattern", p.Name)
			return nil
		}
	}
	m.patterns = append(m.patterns, p)
	m.logger.Debug("pattern added", "pattern", p.Name, "active", len(m.patterns))
	return nil
}

// RemovePattern removes the named pattern from the active set. Removing a
// pattern another active pattern still references is rejected, mirroring
// the add-time reference checks.
func (m *Matcher[T]) RemovePattern(name string) error {
	idx := -1
	for i := range m.patterns {
		if m.patterns[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("pattern %q: %w", name, errors.ErrUnknownPattern),
			"Matcher", "RemovePattern", "find pattern")
	}
	for i := range m.patterns {
		if i == idx {
			continue
		}
		for _, ref := range m.patterns[i].References() {
			if ref == name {
				return errors.WrapInvalid(
					fmt.Errorf("pattern %q is referenced by %q: %w",
						name, m.patterns[i].Name, errors.ErrPatternInUse),
					"Matcher", "RemovePattern", "check references")
			}
		}
	}
	m.patterns = append(m.patterns[:idx], m.patterns[idx+1:]...)
	m.logger.Debug("pattern removed", "pattern", name, "active", len(m.patterns))
	return nil
}

// RegisterExtractor registers fn under id; a later registration for the
// same id overwrites the earlier one.
func (m *Matcher[T]) RegisterExtractor(id int, fn ExtractorFunc[T]) {
	m.extractors[id] = fn
}

// SetContext sets the caller context value threaded into MatchState for
// subsequent extractor invocations.
func (m *Matcher[T]) SetContext(ctx any) {
	m.context = ctx
}

// checkReferences verifies every Ref target of p resolves within the
// active set (with p itself admitted) and that admitting p creates no
// reference cycle. The pre-existing set is acyclic, so any new cycle must
// pass through p; reachability from p suffices.
func checkReferences[T any](p pattern.Pattern[T], active []pattern.Pattern[T]) error {
	byName := make(map[string]*pattern.Pattern[T], len(active)+1)
	for i := range active {
		byName[active[i].Name] = &active[i]
	}
	byName[p.Name] = &p

	var visit func(name string, path map[string]bool) error
	visit = func(name string, path map[string]bool) error {
		target, ok := byName[name]
		if !ok {
			return errors.WrapInvalid(
				fmt.Errorf("pattern %q references %q: %w", p.Name, name, errors.ErrUnknownPattern),
				"Matcher", "AddPattern", "resolve reference")
		}
		if path[name] {
			return errors.WrapInvalid(
				fmt.Errorf("pattern %q: reference chain revisits %q: %w", p.Name, name, errors.ErrPatternCycle),
				"Matcher", "AddPattern", "detect cycle")
		}
		path[name] = true
		for _, ref := range target.References() {
			if err := visit(ref, path); err != nil {
				return err
			}
		}
		delete(path, name)
		return nil
	}

	return visit(p.Name, make(map[string]bool))
}

// Position returns the absolute position where the next streaming scan
// will begin considering candidate starts.
func (m *Matcher[T]) Position() int64 {
	if m.scanFloor > m.window.Start() {
		return m.scanFloor
	}
	return m.window.Start()
}

// ItemsProcessed returns the total number of items pushed through the
// streaming entry points since creation (or the last Reset).
func (m *Matcher[T]) ItemsProcessed() int64 {
	return m.itemsProcessed
}

// PatternCount returns the number of active patterns.
func (m *Matcher[T]) PatternCount() int {
	return len(m.patterns)
}

// Patterns returns the active pattern names in registration order.
func (m *Matcher[T]) Patterns() []string {
	names := make([]string, len(m.patterns))
	for i := range m.patterns {
		names[i] = m.patterns[i].Name
	}
	return names
}

// WindowCapacity returns the scrolling window's capacity.
func (m *Matcher[T]) WindowCapacity() int {
	return m.window.Cap()
}

// WindowLen returns the number of items currently retained.
func (m *Matcher[T]) WindowLen() int {
	return m.window.Len()
}

// GrowWindow raises the window capacity; the window never shrinks.
func (m *Matcher[T]) GrowWindow(capacity int) error {
	return m.window.Grow(capacity)
}

// WindowStats exposes the window's statistics.
func (m *Matcher[T]) WindowStats() *window.Statistics {
	return m.window.Stats()
}

// Reset clears the window, the item and position counters, and the
// streaming overlap/dedup state. Patterns and extractors survive.
func (m *Matcher[T]) Reset() {
	m.window.Reset()
	m.itemsProcessed = 0
	m.scanFloor = 0
	m.stream.reset()
}

func (m *Matcher[T]) requirePatterns(method string) error {
	if len(m.patterns) == 0 {
		return errors.WrapInvalid(
			errors.ErrNoPatterns, "Matcher", method, "check active patterns")
	}
	return nil
}
