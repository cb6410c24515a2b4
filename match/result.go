package match

// PositionMatch reports one accepted match in position-pair form.
type PositionMatch struct {
	// PatternIndex is the pattern's index in the active set at the time
	// it matched; patterns added mid-run take indices after the
	// pre-existing ones.
	PatternIndex int

	// Pattern is the matched pattern's name.
	Pattern string

	// Start and End bound the covered absolute positions, End exclusive.
	Start int64
	End   int64
}

// CaptureSet maps capture names to the sub-sequences recorded for one
// accepted match. Captured slices are independent copies.
type CaptureSet[T any] map[string][]T

// Result is one streaming completion: a match that finished at the item
// just processed.
type Result[T any] struct {
	// Pattern is the completed pattern's name.
	Pattern string

	// Start and End bound the covered absolute positions, End exclusive.
	Start int64
	End   int64

	// Items is the raw matched subsequence, an independent copy.
	Items []T

	// Value carries an Extract action's substituted value when Extracted
	// is true; otherwise it is the zero value and Items is the result.
	Value T

	// Extracted reports whether Value was produced by an extractor.
	Extracted bool

	// Captures holds the named captures of the match.
	Captures CaptureSet[T]
}

// rawMatch is the engine's internal record of an accepted match, held
// with materialized copies so it stays valid after the window slides.
type rawMatch[T any] struct {
	patternIndex int
	name         string
	covered      span
	items        []T
	captures     map[string][]T
	captureSpans map[string]span
	value        T
	extracted    bool
}
