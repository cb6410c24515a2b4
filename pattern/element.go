package pattern

import (
	"cmp"
	"time"
)

// Kind discriminates the element variants.
type Kind int

const (
	// KindValue tests equality against a fixed value.
	KindValue Kind = iota
	// KindPredicate tests with an arbitrary function.
	KindPredicate
	// KindRange tests inclusive ordering bounds.
	KindRange
	// KindAny matches any single item.
	KindAny
	// KindRef delegates to another registered pattern.
	KindRef
	// KindRepeat applies a nested element under this element's quantifier.
	KindRepeat
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindPredicate:
		return "predicate"
	case KindRange:
		return "range"
	case KindAny:
		return "any"
	case KindRef:
		return "ref"
	case KindRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// NoExtractor is the ExtractorID value meaning no extractor is attached.
const NoExtractor = -1

// Unbounded is the MaxRepeat value meaning the repeat count has no upper
// bound beyond window exhaustion.
const Unbounded = -1

// Settings carries the quantifier and behavior configuration of one
// element.
type Settings struct {
	// MinRepeat and MaxRepeat bound how many consecutive items (or, for
	// Ref and Repeat elements, sub-matches) the element may consume.
	// MinRepeat 0 makes the element optional; MaxRepeat Unbounded caps
	// only at window exhaustion.
	MinRepeat int
	MaxRepeat int

	// MinGap and MaxGap override the repeat range on Any elements used as
	// "skip between MinGap and MaxGap items" gaps. They are meaningless,
	// and rejected by validation, on any other element kind.
	MinGap int
	MaxGap int

	// Greedy elements prefer the longest admissible repeat count; lazy
	// elements the shortest. Defaults to greedy.
	Greedy bool

	// Priority orders pattern evaluation at the same start position;
	// lower values are evaluated first.
	Priority int

	// CaptureName records the element's matched sub-sequence in the match
	// result under this label. Empty means no capture.
	CaptureName string

	// ExtractorID references a callback in the matcher's extractor
	// registry, consulted after the element is tentatively satisfied.
	// NoExtractor means none.
	ExtractorID int

	// Timeout is advisory state threaded through MatchState for the
	// extractor to act on. The engine never enforces it.
	Timeout time.Duration
}

// DefaultSettings returns the settings every element starts from: consume
// exactly one item, greedy, no gap, no capture, no extractor.
func DefaultSettings() Settings {
	return Settings{
		MinRepeat:   1,
		MaxRepeat:   1,
		Greedy:      true,
		ExtractorID: NoExtractor,
	}
}

// Element is one step of a pattern. Construct elements with Value,
// Predicate, Range, Any, Ref, or Repeat, then refine them with the
// chainable setters; the zero Element is not valid.
type Element[T any] struct {
	// Kind discriminates the variant.
	Kind Kind

	// Test is the single-item test for Value, Predicate, Range, and Any
	// elements. Constructors bake the comparison into a closure so the
	// engine needs no trait bounds of its own.
	Test func(T) bool

	// RefName names the delegated pattern for KindRef elements.
	RefName string

	// Literal is the equality operand of a KindValue element, retained
	// for introspection (literal prefiltering); zero for other kinds.
	Literal T

	// Inner is the nested element for KindRepeat.
	Inner *Element[T]

	// Settings carries the element's quantifier and behavior.
	Settings Settings
}

// Value creates an element matching items equal to v.
func Value[T comparable](v T) Element[T] {
	return Element[T]{
		Kind:     KindValue,
		Test:     func(item T) bool { return item == v },
		Literal:  v,
		Settings: DefaultSettings(),
	}
}

// Predicate creates an element matching items for which fn reports true.
func Predicate[T any](fn func(T) bool) Element[T] {
	return Element[T]{
		Kind:     KindPredicate,
		Test:     fn,
		Settings: DefaultSettings(),
	}
}

// Range creates an element matching items within the inclusive bounds
// [lo, hi].
func Range[T cmp.Ordered](lo, hi T) Element[T] {
	return Element[T]{
		Kind:     KindRange,
		Test:     func(item T) bool { return item >= lo && item <= hi },
		Settings: DefaultSettings(),
	}
}

// Any creates a wildcard element matching any single item. Combined with
// Gap it skips a bounded number of irrelevant items.
func Any[T any]() Element[T] {
	return Element[T]{
		Kind:     KindAny,
		Test:     func(T) bool { return true },
		Settings: DefaultSettings(),
	}
}

// Ref creates an element that delegates to the registered pattern with
// the given name. One repeat of the element is one full completion of the
// referenced pattern.
func Ref[T any](name string) Element[T] {
	return Element[T]{
		Kind:     KindRef,
		RefName:  name,
		Settings: DefaultSettings(),
	}
}

// Repeat creates a grouped quantifier: each repeat of the returned element
// is one full quantified match of inner.
func Repeat[T any](inner Element[T]) Element[T] {
	return Element[T]{
		Kind:     KindRepeat,
		Inner:    &inner,
		Settings: DefaultSettings(),
	}
}

// Min returns a copy of the element with MinRepeat set to n, raising
// MaxRepeat to n when it would otherwise fall below the new minimum.
func (e Element[T]) Min(n int) Element[T] {
	e.Settings.MinRepeat = n
	if e.Settings.MaxRepeat != Unbounded && e.Settings.MaxRepeat < n {
		e.Settings.MaxRepeat = n
	}
	return e
}

// Max returns a copy of the element with MaxRepeat set to n. Use
// Unbounded for no upper bound.
func (e Element[T]) Max(n int) Element[T] {
	e.Settings.MaxRepeat = n
	return e
}

// Times returns a copy of the element with the repeat range [min, max].
func (e Element[T]) Times(min, max int) Element[T] {
	e.Settings.MinRepeat = min
	e.Settings.MaxRepeat = max
	return e
}

// Optional returns a copy of the element with MinRepeat 0, making it
// skippable.
func (e Element[T]) Optional() Element[T] {
	e.Settings.MinRepeat = 0
	return e
}

// Gap returns a copy of the element with the gap range [min, max]. Only
// meaningful on Any elements.
func (e Element[T]) Gap(min, max int) Element[T] {
	e.Settings.MinGap = min
	e.Settings.MaxGap = max
	return e
}

// Lazy returns a copy of the element preferring the shortest admissible
// repeat count.
func (e Element[T]) Lazy() Element[T] {
	e.Settings.Greedy = false
	return e
}

// WithPriority returns a copy of the element with the given priority.
func (e Element[T]) WithPriority(p int) Element[T] {
	e.Settings.Priority = p
	return e
}

// Capture returns a copy of the element recording its matched
// sub-sequence under name.
func (e Element[T]) Capture(name string) Element[T] {
	e.Settings.CaptureName = name
	return e
}

// Extractor returns a copy of the element bound to the extractor
// registered under id.
func (e Element[T]) Extractor(id int) Element[T] {
	e.Settings.ExtractorID = id
	return e
}

// WithTimeout returns a copy of the element carrying an advisory timeout
// for its extractor.
func (e Element[T]) WithTimeout(d time.Duration) Element[T] {
	e.Settings.Timeout = d
	return e
}

// WithSettings returns a copy of the element with settings replaced
// wholesale.
func (e Element[T]) WithSettings(s Settings) Element[T] {
	e.Settings = s
	return e
}

// references appends the Ref targets reachable through this element,
// descending into Repeat nesting.
func (e *Element[T]) references(out []string) []string {
	switch e.Kind {
	case KindRef:
		out = append(out, e.RefName)
	case KindRepeat:
		if e.Inner != nil {
			out = e.Inner.references(out)
		}
	}
	return out
}
