// Package pattern defines the data model for sequence patterns: elements,
// their quantifier settings, and pattern-level overlap policy.
//
// A Pattern is a named, ordered sequence of Elements. Each element tests
// one kind of condition against items of the element type T:
//
//   - Value(v): equality against a fixed value (requires comparable)
//   - Predicate(fn): an arbitrary test function
//   - Range(lo, hi): inclusive bounds test (requires cmp.Ordered)
//   - Any(): wildcard, matches any single item
//   - Ref(name): delegates to another registered pattern
//   - Repeat(inner): grouped quantifier over a nested element
//
// Constraints are imposed at constructor granularity rather than on the
// pattern type itself, so a Pattern[T] can mix value tests over comparable
// items with predicates over anything.
//
// Elements carry Settings: a repeat quantifier (MinRepeat/MaxRepeat), gap
// bounds for wildcard skips, greediness, priority, an optional capture
// name, and an optional extractor id. Settings are built with chainable
// copy-on-write setters:
//
//	p := pattern.New("triple-nine",
//		pattern.Value(9).Times(3, 3).Capture("nines"),
//		pattern.Any().Gap(1, 1),
//		pattern.Value(5).Capture("five"),
//	)
//
// Structural validation (empty names, inverted quantifier ranges, gap
// settings on non-wildcard elements) happens in Validate, which the
// matcher invokes before admitting a pattern to its active set. Reference
// resolution and cycle detection need the whole active set and live in the
// match package.
package pattern
