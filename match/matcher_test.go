package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/metric"
	"github.com/c360/seqmatch/pattern"
)

func TestNewRejectsNegativeCapacity(t *testing.T) {
	_, err := New[int](-1)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestAddPatternValidates(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)

	err = m.AddPattern(pattern.New("bad", pattern.Value(1).Times(3, 2)))
	assert.ErrorIs(t, err, errors.ErrInvalidQuantifier)
	assert.Equal(t, 0, m.PatternCount())
}

func TestAddPatternReplacesSameName(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)

	require.NoError(t, m.AddPattern(pattern.New("p", pattern.Value(1))))
	require.NoError(t, m.AddPattern(pattern.New("p", pattern.Value(2))))
	assert.Equal(t, 1, m.PatternCount())

	positions, err := m.FindMatches([]int{1, 2})
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(1), positions[0].Start)
}

func TestAddPatternRejectsUnknownReference(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)

	err = m.AddPattern(pattern.New("p", pattern.Ref[int]("missing")))
	assert.ErrorIs(t, err, errors.ErrUnknownPattern)
}

func TestAddPatternRejectsCycles(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)

	// direct self-reference
	err = m.AddPattern(pattern.New("self", pattern.Ref[int]("self")))
	assert.ErrorIs(t, err, errors.ErrPatternCycle)

	// mutual cycle closed by the second registration
	require.NoError(t, m.AddPattern(pattern.New("a", pattern.Value(1))))
	require.NoError(t, m.AddPattern(pattern.New("b", pattern.Ref[int]("a"))))
	err = m.AddPattern(pattern.New("a", pattern.Ref[int]("b")))
	assert.ErrorIs(t, err, errors.ErrPatternCycle)

	// cycle through a Repeat nesting
	err = m.AddPattern(pattern.New("c", pattern.Repeat(pattern.Ref[int]("c")).Times(1, 2)))
	assert.ErrorIs(t, err, errors.ErrPatternCycle)
}

func TestRemovePattern(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("base", pattern.Value(1))))
	require.NoError(t, m.AddPattern(pattern.New("outer", pattern.Ref[int]("base"))))

	err = m.RemovePattern("missing")
	assert.ErrorIs(t, err, errors.ErrUnknownPattern)

	err = m.RemovePattern("base")
	assert.ErrorIs(t, err, errors.ErrPatternInUse)

	require.NoError(t, m.RemovePattern("outer"))
	require.NoError(t, m.RemovePattern("base"))
	assert.Equal(t, 0, m.PatternCount())
}

func TestPatternsReturnsRegistrationOrder(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("first", pattern.Value(1))))
	require.NoError(t, m.AddPattern(pattern.New("second", pattern.Value(2))))

	assert.Equal(t, []string{"first", "second"}, m.Patterns())
}

func TestGrowWindow(t *testing.T) {
	m, err := New[int](2)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("p", pattern.Value(1))))

	assert.Equal(t, 2, m.WindowCapacity())
	require.NoError(t, m.GrowWindow(8))
	assert.Equal(t, 8, m.WindowCapacity())

	err = m.GrowWindow(4)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	assert.Equal(t, 8, m.WindowCapacity())
}

func TestWithMetricsOption(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	m, err := New[int](8,
		WithMetrics[int](registry, "test_matcher"),
		WithPatterns[int](pattern.New("one", pattern.Value(1))))
	require.NoError(t, err)

	results, err := m.ProcessItems([]int{1, 2, 1})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["seqmatch_matcher_items_total"])
	assert.True(t, names["seqmatch_matcher_matches_total"])
}

func TestRegisterExtractorOverwrites(t *testing.T) {
	m, err := New[int](8)
	require.NoError(t, err)
	require.NoError(t, m.AddPattern(pattern.New("one", pattern.Value(1).Extractor(1))))

	m.RegisterExtractor(1, func(*MatchState[int]) (Action, error) {
		return Discard, nil
	})
	m.RegisterExtractor(1, func(*MatchState[int]) (Action, error) {
		return Continue, nil
	})

	positions, err := m.FindMatches([]int{1})
	require.NoError(t, err)
	assert.Len(t, positions, 1)
}
