package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/pattern"
)

func newIntMatcher(t *testing.T, capacity int, patterns ...pattern.Pattern[int]) *Matcher[int] {
	t.Helper()
	m, err := New[int](capacity, WithPatterns[int](patterns...))
	require.NoError(t, err)
	return m
}

func TestFindNamedRepeatedValue(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("twos", pattern.Value(2).Min(3).Capture("twos")))

	named, err := m.FindNamed([]int{1, 2, 2, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Len(t, named["twos"], 1)
	assert.Equal(t, []int{2, 2, 2}, named["twos"][0]["twos"])

	positions, err := m.FindMatches([]int{1, 2, 2, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(1), positions[0].Start)
	assert.Equal(t, int64(4), positions[0].End)
}

func TestFindNamedGapBetweenGroups(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("seq",
			pattern.Value(9).Times(3, 3).Capture("nines"),
			pattern.Any[int]().Gap(0, 1),
			pattern.Value(5).Capture("five")))

	named, err := m.FindNamed([]int{1, 9, 9, 2, 3, 4, 9, 9, 9, 5})
	require.NoError(t, err)
	require.Len(t, named["seq"], 1)
	assert.Equal(t, []int{9, 9, 9}, named["seq"][0]["nines"])
	assert.Equal(t, []int{5}, named["seq"][0]["five"])
}

func TestFindMatchesOverlappingPatterns(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("one-two", pattern.Value(1), pattern.Value(2)),
		pattern.New("two-one", pattern.Value(2), pattern.Value(1)))

	positions, err := m.FindMatches([]int{1, 2, 1, 2, 1})
	require.NoError(t, err)

	starts := make(map[string][]int64)
	for _, p := range positions {
		starts[p.Pattern] = append(starts[p.Pattern], p.Start)
	}
	assert.Contains(t, starts["one-two"], int64(0))
	assert.Contains(t, starts["two-one"], int64(1))
}

func TestFindMatchesEmptyData(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("pair", pattern.Value(1), pattern.Value(2)))

	positions, err := m.FindMatches(nil)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestFindMatchesNoPatterns(t *testing.T) {
	m, err := New[int](16)
	require.NoError(t, err)

	_, err = m.FindMatches([]int{1, 2, 3})
	assert.ErrorIs(t, err, errors.ErrNoPatterns)

	_, err = m.FindNamed([]int{1})
	assert.ErrorIs(t, err, errors.ErrNoPatterns)

	_, err = m.ProcessItem(1)
	assert.ErrorIs(t, err, errors.ErrNoPatterns)
}

func TestProcessItemExtract(t *testing.T) {
	m := newIntMatcher(t, 8,
		pattern.New("big", pattern.Predicate(func(v int) bool { return v >= 10 }).Extractor(2)))
	m.RegisterExtractor(2, func(st *MatchState[int]) (Action, error) {
		return Extract(st.Item * 2), nil
	})

	results, err := m.ProcessItems([]int{1, 5, 15})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "big", results[0].Pattern)
	assert.True(t, results[0].Extracted)
	assert.Equal(t, 30, results[0].Value)
	assert.Equal(t, int64(2), results[0].Start)
	assert.Equal(t, int64(3), results[0].End)
}

func TestProcessItemEmitsOncePerCompletion(t *testing.T) {
	m := newIntMatcher(t, 5,
		pattern.New("pair", pattern.Value(1), pattern.Value(2)))

	res, err := m.ProcessItem(1)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = m.ProcessItem(2)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(0), res.Start)
	assert.Equal(t, int64(2), res.End)
	assert.Equal(t, []int{1, 2}, res.Items)

	// the completed match stays inside the window but must not re-emit
	res, err = m.ProcessItem(3)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = m.ProcessItem(1)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = m.ProcessItem(2)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(3), res.Start)
	assert.Equal(t, int64(5), res.End)
}

func TestProcessItemPositionsSurviveEviction(t *testing.T) {
	m := newIntMatcher(t, 2,
		pattern.New("seven", pattern.Value(7)))

	res, err := m.ProcessItem(7)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(0), res.Start)

	res, err = m.ProcessItem(7)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(1), res.Start)

	res, err = m.ProcessItem(8)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = m.ProcessItem(7)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(3), res.Start)
	assert.Equal(t, int64(4), res.End)
	assert.Equal(t, int64(4), m.ItemsProcessed())
}

func TestProcessItemZeroCapacityWindow(t *testing.T) {
	m := newIntMatcher(t, 0,
		pattern.New("one", pattern.Value(1)))

	res, err := m.ProcessItem(1)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 0, m.WindowLen())
	assert.Equal(t, int64(1), m.ItemsProcessed())
}

func TestSkipAdvancesScan(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("marker", pattern.Value(9).Extractor(7)),
		pattern.New("ones", pattern.Value(1)))
	m.RegisterExtractor(7, func(*MatchState[int]) (Action, error) {
		return Skip(2), nil
	})

	positions, err := m.FindMatches([]int{9, 1, 1, 1, 9, 1})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "ones", positions[0].Pattern)
	assert.Equal(t, int64(3), positions[0].Start)
}

func TestStopEndsRunKeepingResults(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("ones", pattern.Value(1)),
		pattern.New("stopper", pattern.Value(9).Extractor(1)))
	m.RegisterExtractor(1, func(*MatchState[int]) (Action, error) {
		return Stop, nil
	})

	positions, err := m.FindMatches([]int{1, 9, 1})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "ones", positions[0].Pattern)
	assert.Equal(t, int64(0), positions[0].Start)
}

func TestDiscardDropsOnlyCurrentCandidate(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("odd", pattern.Predicate(func(v int) bool { return v%2 == 1 }).Extractor(4)))
	m.RegisterExtractor(4, func(st *MatchState[int]) (Action, error) {
		if st.Item == 3 {
			return Discard, nil
		}
		return Continue, nil
	})

	positions, err := m.FindMatches([]int{1, 3, 5})
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, int64(0), positions[0].Start)
	assert.Equal(t, int64(2), positions[1].Start)
}

func TestJumpBackwardWithDeduplicate(t *testing.T) {
	jumped := false
	m := newIntMatcher(t, 16,
		pattern.New("one", pattern.Value(1)).WithDeduplicate(),
		pattern.New("jumper", pattern.Value(2).Extractor(9)))
	m.RegisterExtractor(9, func(*MatchState[int]) (Action, error) {
		if jumped {
			return Continue, nil
		}
		jumped = true
		return Jump(-2), nil
	})

	positions, err := m.FindMatches([]int{1, 2})
	require.NoError(t, err)
	// the rescanned "one" candidate is rejected as a duplicate
	require.Len(t, positions, 2)
	assert.Equal(t, "one", positions[0].Pattern)
	assert.Equal(t, "jumper", positions[1].Pattern)
}

func TestRestartResetsOverlapState(t *testing.T) {
	restarted := false
	m := newIntMatcher(t, 16,
		pattern.New("pair", pattern.Value(1), pattern.Value(2)),
		pattern.New("eight", pattern.Value(8).Extractor(5)))
	m.RegisterExtractor(5, func(*MatchState[int]) (Action, error) {
		if restarted {
			return Discard, nil
		}
		restarted = true
		return Restart(0), nil
	})

	positions, err := m.FindMatches([]int{1, 2, 8})
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "pair", positions[0].Pattern)
	assert.Equal(t, "pair", positions[1].Pattern)
	assert.Equal(t, positions[0].Start, positions[1].Start)
}

func TestInvalidScanPositions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{name: "negative skip", action: Skip(-1)},
		{name: "jump past end", action: Jump(10)},
		{name: "restart outside window", action: Restart(99)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newIntMatcher(t, 16,
				pattern.New("one", pattern.Value(1).Extractor(1)))
			m.RegisterExtractor(1, func(*MatchState[int]) (Action, error) {
				return tt.action, nil
			})

			_, err := m.FindMatches([]int{1})
			assert.ErrorIs(t, err, errors.ErrInvalidPosition)
		})
	}
}

func TestExtractWrongTypeFails(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("one", pattern.Value(1).Extractor(1)))
	m.RegisterExtractor(1, func(*MatchState[int]) (Action, error) {
		return Extract("not an int"), nil
	})

	_, err := m.FindMatches([]int{1})
	assert.ErrorIs(t, err, errors.ErrExtractorFailed)
}

func TestExtractorPanicSurfacesAsError(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("one", pattern.Value(1).Extractor(1)))
	m.RegisterExtractor(1, func(*MatchState[int]) (Action, error) {
		panic("boom")
	})

	_, err := m.FindMatches([]int{1})
	assert.ErrorIs(t, err, errors.ErrExtractorFailed)
}

func TestUnregisteredExtractorFails(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("one", pattern.Value(1).Extractor(42)))

	_, err := m.FindMatches([]int{1})
	assert.ErrorIs(t, err, errors.ErrExtractorNotFound)
}

func TestExclusivePatternBlocksOverlap(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("block", pattern.Value(5), pattern.Value(5)).Exclusive(),
		pattern.New("single", pattern.Value(5)))

	positions, err := m.FindMatches([]int{5, 5})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "block", positions[0].Pattern)
}

func TestOverlapWithOthersFalseBlocksSelfOverlap(t *testing.T) {
	run4 := func(p pattern.Pattern[int]) []PositionMatch {
		m := newIntMatcher(t, 16, p)
		positions, err := m.FindMatches([]int{4, 4, 4})
		require.NoError(t, err)
		return positions
	}

	open := run4(pattern.New("runs", pattern.Value(4).Min(1).Max(pattern.Unbounded)))
	assert.Len(t, open, 3)

	closed := run4(pattern.New("runs",
		pattern.Value(4).Min(1).Max(pattern.Unbounded)).WithOverlap(false, true))
	require.Len(t, closed, 1)
	assert.Equal(t, int64(0), closed[0].Start)
	assert.Equal(t, int64(3), closed[0].End)
}

func TestPriorityOrdersSameStartCandidates(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("low", pattern.Value(1)).WithPriority(10),
		pattern.New("high", pattern.Value(1)).WithPriority(1).Exclusive())

	positions, err := m.FindMatches([]int{1})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "high", positions[0].Pattern)
}

func TestGreedyPrefersLongestLazyShortest(t *testing.T) {
	data := []int{1, 1, 1}

	greedy := newIntMatcher(t, 16,
		pattern.New("g", pattern.Value(1).Times(1, 3).Capture("ones"), pattern.Value(1)))
	named, err := greedy.FindNamed(data)
	require.NoError(t, err)
	require.NotEmpty(t, named["g"])
	assert.Equal(t, []int{1, 1}, named["g"][0]["ones"])

	lazy := newIntMatcher(t, 16,
		pattern.New("l", pattern.Value(1).Times(1, 3).Lazy().Capture("ones"), pattern.Value(1)))
	named, err = lazy.FindNamed(data)
	require.NoError(t, err)
	require.NotEmpty(t, named["l"])
	assert.Equal(t, []int{1}, named["l"][0]["ones"])
}

func TestOptionalElement(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("opt", pattern.Value(1), pattern.Value(9).Optional(), pattern.Value(2)))

	positions, err := m.FindMatches([]int{1, 2, 1, 9, 2})
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, int64(0), positions[0].Start)
	assert.Equal(t, int64(2), positions[0].End)
	assert.Equal(t, int64(2), positions[1].Start)
	assert.Equal(t, int64(5), positions[1].End)
}

func TestRefDelegatesToRegisteredPattern(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("digits", pattern.Range(0, 9).Times(2, 2).Capture("d")),
		pattern.New("wrapped", pattern.Value(-1), pattern.Ref[int]("digits"), pattern.Value(-1)))

	named, err := m.FindNamed([]int{-1, 3, 4, -1})
	require.NoError(t, err)
	require.Len(t, named["wrapped"], 1)
	assert.Equal(t, []int{3, 4}, named["wrapped"][0]["d"])

	positions, err := m.FindMatches([]int{-1, 3, 4, -1})
	require.NoError(t, err)
	var wrapped []PositionMatch
	for _, p := range positions {
		if p.Pattern == "wrapped" {
			wrapped = append(wrapped, p)
		}
	}
	require.Len(t, wrapped, 1)
	assert.Equal(t, int64(0), wrapped[0].Start)
	assert.Equal(t, int64(4), wrapped[0].End)
}

func TestRepeatNestedQuantifier(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("quads",
			pattern.Repeat(pattern.Value(2).Times(2, 2)).Times(1, 2),
			pattern.Value(5)))

	positions, err := m.FindMatches([]int{2, 2, 2, 2, 5})
	require.NoError(t, err)
	require.NotEmpty(t, positions)
	assert.Equal(t, int64(0), positions[0].Start)
	assert.Equal(t, int64(5), positions[0].End)
}

func TestRepeatInnerCountYieldsToRemainder(t *testing.T) {
	// A greedy inner quantifier must give back items when the remainder
	// of the pattern cannot otherwise complete.
	m := newIntMatcher(t, 16,
		pattern.New("backoff",
			pattern.Repeat(pattern.Value(1).Times(1, 2).Capture("ones")),
			pattern.Value(1)))

	positions, err := m.FindMatches([]int{1, 1})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(0), positions[0].Start)
	assert.Equal(t, int64(2), positions[0].End)

	named, err := m.FindNamed([]int{1, 1})
	require.NoError(t, err)
	require.Len(t, named["backoff"], 1)
	assert.Equal(t, []int{1}, named["backoff"][0]["ones"])
}

func TestRepeatLazyInnerCountExtendsForRemainder(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("extend",
			pattern.Repeat(pattern.Value(1).Times(1, 2).Lazy()),
			pattern.Value(2)))

	positions, err := m.FindMatches([]int{1, 1, 2})
	require.NoError(t, err)
	require.NotEmpty(t, positions)
	assert.Equal(t, int64(0), positions[0].Start)
	assert.Equal(t, int64(3), positions[0].End)
}

func TestAddPatternActionTakesEffectMidRun(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("trigger", pattern.Value(0).Extractor(6)))
	m.RegisterExtractor(6, func(*MatchState[int]) (Action, error) {
		return AddPattern(pattern.New("later", pattern.Value(3))), nil
	})

	positions, err := m.FindMatches([]int{0, 3})
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "trigger", positions[0].Pattern)
	assert.Equal(t, "later", positions[1].Pattern)
	assert.Equal(t, 2, m.PatternCount())
}

func TestRemovePatternActionTakesEffectMidRun(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("trigger", pattern.Value(0).Extractor(6)),
		pattern.New("victim", pattern.Value(3)))
	m.RegisterExtractor(6, func(*MatchState[int]) (Action, error) {
		return RemovePattern("victim"), nil
	})

	positions, err := m.FindMatches([]int{0, 3})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "trigger", positions[0].Pattern)
	assert.Equal(t, 1, m.PatternCount())
}

func TestFailedRunLeavesPatternSetIntact(t *testing.T) {
	m := newIntMatcher(t, 16,
		pattern.New("trigger", pattern.Value(0).Extractor(6)))
	m.RegisterExtractor(6, func(*MatchState[int]) (Action, error) {
		return AddPattern(pattern.New("later", pattern.Value(3))), nil
	})

	// trigger fires at position 0, then the unresolvable extractor on a
	// second pattern added below fails the run
	require.NoError(t, m.AddPattern(pattern.New("broken", pattern.Value(3).Extractor(99))))

	_, err := m.FindMatches([]int{0, 3})
	require.ErrorIs(t, err, errors.ErrExtractorNotFound)
	assert.Equal(t, []string{"trigger", "broken"}, m.Patterns())
}

func TestOnMatchCallback(t *testing.T) {
	var seen []string
	m := newIntMatcher(t, 16,
		pattern.New("one", pattern.Value(1).Capture("v")).
			WithOnMatch(func(info pattern.MatchInfo[int]) {
				seen = append(seen, info.Pattern)
			}))

	_, err := m.FindMatches([]int{1, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "one"}, seen)
}

func TestMatchStateSnapshot(t *testing.T) {
	var got *MatchState[int]
	m := newIntMatcher(t, 8,
		pattern.New("pair", pattern.Value(1), pattern.Value(2).Extractor(3)))
	m.RegisterExtractor(3, func(st *MatchState[int]) (Action, error) {
		got = st
		return Continue, nil
	})
	m.SetContext("ctx-value")

	_, err := m.ProcessItems([]int{1, 2})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(0), got.Start)
	assert.Equal(t, int64(2), got.Pos)
	assert.Equal(t, 2, got.Item)
	assert.Equal(t, []int{1, 2}, got.Matched)
	assert.Equal(t, "pair", got.Pattern)
	assert.Equal(t, 1, got.ElementIndex)
	assert.Equal(t, int64(2), got.ItemsProcessed)
	assert.Equal(t, "ctx-value", got.Context)
}

func TestResetClearsStreamingState(t *testing.T) {
	m := newIntMatcher(t, 4,
		pattern.New("pair", pattern.Value(1), pattern.Value(2)))

	results, err := m.ProcessItems([]int{1, 2, 1, 2})
	require.NoError(t, err)
	require.Len(t, results, 2)

	m.Reset()
	assert.Equal(t, int64(0), m.Position())
	assert.Equal(t, int64(0), m.ItemsProcessed())
	assert.Equal(t, 0, m.WindowLen())
	assert.Equal(t, 1, m.PatternCount())

	results, err = m.ProcessItems([]int{1, 2})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(0), results[0].Start)
}
