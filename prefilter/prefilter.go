package prefilter

import (
	"strings"

	ac "github.com/petar-dambovaliev/aho-corasick"

	"github.com/c360/seqmatch/pattern"
)

// Config controls automaton construction.
type Config struct {
	// CaseInsensitive enables ASCII case-insensitive literal matching.
	CaseInsensitive bool `json:"case_insensitive"`

	// MinLiteralLength drops literals too short to be selective; patterns
	// contributing only short literals become always-pass.
	MinLiteralLength int `json:"min_literal_length"`

	// Enabled is the master switch; a disabled prefilter reports every
	// pattern as a candidate.
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns the standard prefilter configuration.
func DefaultConfig() Config {
	return Config{
		CaseInsensitive:  false,
		MinLiteralLength: 1,
		Enabled:          true,
	}
}

// Stats describes a built prefilter.
type Stats struct {
	// LiteralCount is the number of literals in the automaton.
	LiteralCount int `json:"literal_count"`

	// PatternCount is the number of gated patterns.
	PatternCount int `json:"pattern_count"`

	// AlwaysPass is the number of patterns with no usable literal, which
	// every window reports as candidates.
	AlwaysPass int `json:"always_pass"`
}

// Effective reports whether the prefilter can actually rule patterns out.
func (s Stats) Effective() bool {
	return s.LiteralCount > 0 && s.AlwaysPass < s.PatternCount
}

// Prefilter is an Aho-Corasick gate over string patterns: given a window
// of items it names the patterns whose required literals appear, so the
// caller can skip scanning the rest. A pattern requires a literal when
// one of its top-level elements is a non-optional Value; patterns without
// such an element always pass.
type Prefilter struct {
	automaton *ac.AhoCorasick

	// literalOwners maps automaton pattern index to the names of patterns
	// requiring that literal.
	literalOwners map[int][]string

	// alwaysPass holds patterns with no usable required literal.
	alwaysPass []string

	stats Stats
	cfg   Config
}

// Build constructs a prefilter for the given patterns.
func Build(patterns []pattern.Pattern[string], cfg Config) *Prefilter {
	p := &Prefilter{
		literalOwners: make(map[int][]string),
		cfg:           cfg,
	}
	p.stats.PatternCount = len(patterns)

	if !cfg.Enabled {
		for i := range patterns {
			p.alwaysPass = append(p.alwaysPass, patterns[i].Name)
		}
		p.stats.AlwaysPass = len(p.alwaysPass)
		return p
	}

	var literals []string
	index := make(map[string]int)
	for i := range patterns {
		lits := requiredLiterals(&patterns[i], cfg.MinLiteralLength)
		if len(lits) == 0 {
			p.alwaysPass = append(p.alwaysPass, patterns[i].Name)
			continue
		}
		// any one of the pattern's required literals gates it in; matching
		// all of them is the engine's job
		for _, lit := range lits {
			idx, ok := index[lit]
			if !ok {
				idx = len(literals)
				index[lit] = idx
				literals = append(literals, lit)
			}
			p.literalOwners[idx] = append(p.literalOwners[idx], patterns[i].Name)
		}
	}

	if len(literals) > 0 {
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			AsciiCaseInsensitive: cfg.CaseInsensitive,
			MatchKind:            ac.LeftMostLongestMatch,
		})
		automaton := builder.Build(literals)
		p.automaton = &automaton
	}

	p.stats.LiteralCount = len(literals)
	p.stats.AlwaysPass = len(p.alwaysPass)
	return p
}

// requiredLiterals collects the Value literals a match of p must contain:
// the equality operands of top-level, non-optional Value elements.
func requiredLiterals(p *pattern.Pattern[string], minLen int) []string {
	var out []string
	for i := range p.Elements {
		el := &p.Elements[i]
		if el.Kind != pattern.KindValue || el.Settings.MinRepeat < 1 {
			continue
		}
		if len(el.Literal) < minLen {
			continue
		}
		out = append(out, el.Literal)
	}
	return out
}

// Candidates returns the names of patterns worth scanning against the
// given window: always-pass patterns plus those with a required literal
// occurring in some window item. Order is not specified; names are
// deduplicated.
func (p *Prefilter) Candidates(window []string) []string {
	out := append([]string(nil), p.alwaysPass...)
	if p.automaton == nil || len(window) == 0 {
		return out
	}

	// NUL-joined so literals cannot match across item boundaries
	text := strings.Join(window, "\x00")
	seen := make(map[string]struct{}, len(out))
	for _, name := range out {
		seen[name] = struct{}{}
	}
	for _, m := range p.automaton.FindAll(text) {
		for _, name := range p.literalOwners[m.Pattern()] {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Admit reports whether a single item can contribute to any gated
// pattern, or whether always-pass patterns exist.
func (p *Prefilter) Admit(item string) bool {
	if len(p.alwaysPass) > 0 || p.automaton == nil {
		return true
	}
	return len(p.automaton.FindAll(item)) > 0
}

// Stats returns construction statistics.
func (p *Prefilter) Stats() Stats {
	return p.stats
}
