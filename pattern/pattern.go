package pattern

import (
	"fmt"

	"github.com/c360/seqmatch/errors"
)

// Pattern is a named, ordered sequence of elements plus pattern-level
// matching policy.
type Pattern[T any] struct {
	// Name identifies the pattern in results and Ref elements.
	Name string

	// Elements are consumed left to right against the window.
	Elements []Element[T]

	// OverlapWithOthers permits this pattern's matches to overlap matches
	// already accepted for other patterns. Defaults to true.
	OverlapWithOthers bool

	// OthersMayOverlap permits later matches of any pattern to overlap a
	// match of this pattern once accepted. Defaults to true.
	OthersMayOverlap bool

	// Deduplicate suppresses a match whose covered positions and captured
	// content exactly equal a previously accepted match of this pattern.
	Deduplicate bool

	// Priority orders same-start matches across patterns; lower values
	// are evaluated first. When zero, the first element's priority is
	// used instead.
	Priority int

	// OnMatch, when set, is invoked for each accepted match of this
	// pattern in addition to the returned results.
	OnMatch func(MatchInfo[T])
}

// MatchInfo describes one accepted match, passed to the OnMatch callback.
type MatchInfo[T any] struct {
	Pattern  string
	Start    int64
	End      int64
	Items    []T
	Captures map[string][]T
}

// New creates a pattern with default policy: overlap permitted both ways,
// no deduplication, priority zero.
func New[T any](name string, elements ...Element[T]) Pattern[T] {
	return Pattern[T]{
		Name:              name,
		Elements:          elements,
		OverlapWithOthers: true,
		OthersMayOverlap:  true,
	}
}

// WithOverlap returns a copy of the pattern with both overlap flags set.
func (p Pattern[T]) WithOverlap(withOthers, othersMay bool) Pattern[T] {
	p.OverlapWithOthers = withOthers
	p.OthersMayOverlap = othersMay
	return p
}

// Exclusive returns a copy of the pattern that neither overlaps accepted
// matches nor admits later overlapping matches.
func (p Pattern[T]) Exclusive() Pattern[T] {
	return p.WithOverlap(false, false)
}

// WithDeduplicate returns a copy of the pattern with deduplication
// enabled.
func (p Pattern[T]) WithDeduplicate() Pattern[T] {
	p.Deduplicate = true
	return p
}

// WithPriority returns a copy of the pattern with the given priority.
func (p Pattern[T]) WithPriority(priority int) Pattern[T] {
	p.Priority = priority
	return p
}

// WithOnMatch returns a copy of the pattern with an accepted-match
// callback.
func (p Pattern[T]) WithOnMatch(fn func(MatchInfo[T])) Pattern[T] {
	p.OnMatch = fn
	return p
}

// EffectivePriority resolves the priority used for same-start ordering:
// the pattern-level value when set, otherwise the first element's.
func (p *Pattern[T]) EffectivePriority() int {
	if p.Priority != 0 {
		return p.Priority
	}
	if len(p.Elements) > 0 {
		return p.Elements[0].Settings.Priority
	}
	return 0
}

// References returns the names of patterns referenced directly by this
// pattern's elements, including those nested under Repeat.
func (p *Pattern[T]) References() []string {
	var out []string
	for i := range p.Elements {
		out = p.Elements[i].references(out)
	}
	return out
}

// Validate rejects structurally invalid patterns before they can enter an
// active set. Reference resolution against the active set is the
// matcher's job; everything checkable from the pattern alone is checked
// here.
func (p *Pattern[T]) Validate() error {
	if p.Name == "" {
		return errors.WrapInvalid(
			fmt.Errorf("pattern has no name: %w", errors.ErrInvalidPattern),
			"Pattern", "Validate", "check name")
	}
	if len(p.Elements) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("pattern %q has no elements: %w", p.Name, errors.ErrInvalidPattern),
			"Pattern", "Validate", "check elements")
	}
	for i := range p.Elements {
		if err := validateElement(&p.Elements[i], p.Name, i); err != nil {
			return err
		}
	}
	return nil
}

func validateElement[T any](e *Element[T], patternName string, index int) error {
	s := e.Settings

	if s.MinRepeat < 0 {
		return quantifierError(patternName, index,
			fmt.Sprintf("min repeat %d is negative", s.MinRepeat))
	}
	if s.MaxRepeat != Unbounded {
		if s.MaxRepeat < 0 {
			return quantifierError(patternName, index,
				fmt.Sprintf("max repeat %d is negative", s.MaxRepeat))
		}
		if s.MinRepeat > s.MaxRepeat {
			return quantifierError(patternName, index,
				fmt.Sprintf("min repeat %d exceeds max repeat %d", s.MinRepeat, s.MaxRepeat))
		}
	}

	if s.MinGap != 0 || s.MaxGap != 0 {
		if e.Kind != KindAny {
			return errors.WrapInvalid(
				fmt.Errorf("pattern %q element %d: gap settings on %s element: %w",
					patternName, index, e.Kind, errors.ErrInvalidPattern),
				"Pattern", "Validate", "check gap settings")
		}
		if s.MinGap < 0 || s.MaxGap < 0 {
			return quantifierError(patternName, index,
				fmt.Sprintf("negative gap range [%d, %d]", s.MinGap, s.MaxGap))
		}
		if s.MinGap > s.MaxGap {
			return quantifierError(patternName, index,
				fmt.Sprintf("min gap %d exceeds max gap %d", s.MinGap, s.MaxGap))
		}
	}

	switch e.Kind {
	case KindValue, KindPredicate, KindRange, KindAny:
		if e.Test == nil {
			return errors.WrapInvalid(
				fmt.Errorf("pattern %q element %d: %s element has no test: %w",
					patternName, index, e.Kind, errors.ErrInvalidPattern),
				"Pattern", "Validate", "check element test")
		}
	case KindRef:
		if e.RefName == "" {
			return errors.WrapInvalid(
				fmt.Errorf("pattern %q element %d: empty reference name: %w",
					patternName, index, errors.ErrInvalidPattern),
				"Pattern", "Validate", "check reference")
		}
	case KindRepeat:
		if e.Inner == nil {
			return errors.WrapInvalid(
				fmt.Errorf("pattern %q element %d: repeat element has no inner element: %w",
					patternName, index, errors.ErrInvalidPattern),
				"Pattern", "Validate", "check repeat")
		}
		if err := validateElement(e.Inner, patternName, index); err != nil {
			return err
		}
	}

	return nil
}

func quantifierError(patternName string, index int, detail string) error {
	return errors.WrapInvalid(
		fmt.Errorf("pattern %q element %d: %s: %w",
			patternName, index, detail, errors.ErrInvalidQuantifier),
		"Pattern", "Validate", "check quantifier")
}
