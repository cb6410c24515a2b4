package ruleset

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/pattern"
	"github.com/c360/seqmatch/pkg/cache"
)

// defaultRegexCacheSize bounds the compiled-regex cache; rule files rarely
// carry more than a handful of distinct expressions.
const defaultRegexCacheSize = 256

// File is the top-level shape of a pattern definition file.
type File struct {
	Patterns []PatternDef `yaml:"patterns"`
}

// PatternDef defines one pattern. An empty name is assigned a positional
// default (pattern_0, pattern_1, ...).
type PatternDef struct {
	Name        string `yaml:"name,omitempty"`
	Priority    int    `yaml:"priority,omitempty"`
	Deduplicate bool   `yaml:"deduplicate,omitempty"`
	// Exclusive is shorthand for setting both overlap flags to false.
	Exclusive         bool  `yaml:"exclusive,omitempty"`
	OverlapWithOthers *bool `yaml:"overlap_with_others,omitempty"`
	OthersMayOverlap  *bool `yaml:"others_may_overlap,omitempty"`

	Elements []ElementDef `yaml:"elements"`
}

// ElementDef defines one element. Exactly one of the variant fields
// (value, regex, range, any, ref, repeat) must be set.
type ElementDef struct {
	Value  *string     `yaml:"value,omitempty"`
	Regex  string      `yaml:"regex,omitempty"`
	Range  *RangeDef   `yaml:"range,omitempty"`
	Any    bool        `yaml:"any,omitempty"`
	Ref    string      `yaml:"ref,omitempty"`
	Repeat *ElementDef `yaml:"repeat,omitempty"`

	Min       *int   `yaml:"min,omitempty"`
	Max       *int   `yaml:"max,omitempty"` // -1 means unbounded
	MinGap    int    `yaml:"min_gap,omitempty"`
	MaxGap    int    `yaml:"max_gap,omitempty"`
	Lazy      bool   `yaml:"lazy,omitempty"`
	Optional  bool   `yaml:"optional,omitempty"`
	Priority  int    `yaml:"priority,omitempty"`
	Capture   string `yaml:"capture,omitempty"`
	Extractor *int   `yaml:"extractor,omitempty"`
}

// RangeDef defines inclusive string ordering bounds.
type RangeDef struct {
	Lo string `yaml:"lo"`
	Hi string `yaml:"hi"`
}

// Loader builds string patterns from YAML definitions, caching compiled
// regular expressions across loads.
type Loader struct {
	regexes cache.Cache[*regexp.Regexp]
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRegexCache replaces the compiled-regex cache, for sharing one cache
// across loaders or attaching metrics.
func WithRegexCache(c cache.Cache[*regexp.Regexp]) Option {
	return func(l *Loader) {
		if c != nil {
			l.regexes = c
		}
	}
}

// NewLoader creates a pattern definition loader.
func NewLoader(opts ...Option) (*Loader, error) {
	regexes, err := cache.NewLRU[*regexp.Regexp](defaultRegexCacheSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		regexes: regexes,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// LoadFile reads and parses a YAML pattern definition file.
func (l *Loader) LoadFile(path string) ([]pattern.Pattern[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%s: %w", path, err), "Loader", "LoadFile", "read rule file")
	}
	patterns, err := l.Parse(data)
	if err != nil {
		return nil, err
	}
	l.logger.Info("rule file loaded", "path", path, "patterns", len(patterns))
	return patterns, nil
}

// Parse builds patterns from YAML definition bytes. Every built pattern is
// structurally validated; reference resolution against the final active
// set remains the matcher's job at AddPattern time.
func (l *Loader) Parse(data []byte) ([]pattern.Pattern[string], error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%v: %w", err, errors.ErrInvalidConfig),
			"Loader", "Parse", "decode rule definitions")
	}
	if len(file.Patterns) == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("no patterns defined: %w", errors.ErrInvalidConfig),
			"Loader", "Parse", "decode rule definitions")
	}

	patterns := make([]pattern.Pattern[string], 0, len(file.Patterns))
	for i, def := range file.Patterns {
		p, err := l.buildPattern(i, &def)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func (l *Loader) buildPattern(index int, def *PatternDef) (pattern.Pattern[string], error) {
	name := def.Name
	if name == "" {
		name = fmt.Sprintf("pattern_%d", index)
	}

	elements := make([]pattern.Element[string], 0, len(def.Elements))
	for i := range def.Elements {
		el, err := l.buildElement(name, i, &def.Elements[i])
		if err != nil {
			return pattern.Pattern[string]{}, err
		}
		elements = append(elements, el)
	}

	p := pattern.New(name, elements...)
	p.Priority = def.Priority
	p.Deduplicate = def.Deduplicate
	if def.Exclusive {
		p = p.Exclusive()
	}
	if def.OverlapWithOthers != nil {
		p.OverlapWithOthers = *def.OverlapWithOthers
	}
	if def.OthersMayOverlap != nil {
		p.OthersMayOverlap = *def.OthersMayOverlap
	}

	if err := p.Validate(); err != nil {
		return pattern.Pattern[string]{}, err
	}
	return p, nil
}

func (l *Loader) buildElement(patternName string, index int, def *ElementDef) (pattern.Element[string], error) {
	var zero pattern.Element[string]

	el, err := l.buildVariant(patternName, index, def)
	if err != nil {
		return zero, err
	}

	if def.Min != nil {
		el = el.Min(*def.Min)
	}
	if def.Max != nil {
		if *def.Max < 0 {
			el = el.Max(pattern.Unbounded)
		} else {
			el = el.Max(*def.Max)
		}
	}
	if def.Optional {
		el = el.Optional()
	}
	if def.MinGap != 0 || def.MaxGap != 0 {
		el = el.Gap(def.MinGap, def.MaxGap)
	}
	if def.Lazy {
		el = el.Lazy()
	}
	if def.Priority != 0 {
		el = el.WithPriority(def.Priority)
	}
	if def.Capture != "" {
		el = el.Capture(def.Capture)
	}
	if def.Extractor != nil {
		el = el.Extractor(*def.Extractor)
	}
	return el, nil
}

func (l *Loader) buildVariant(patternName string, index int, def *ElementDef) (pattern.Element[string], error) {
	var zero pattern.Element[string]

	variants := 0
	if def.Value != nil {
		variants++
	}
	if def.Regex != "" {
		variants++
	}
	if def.Range != nil {
		variants++
	}
	if def.Any {
		variants++
	}
	if def.Ref != "" {
		variants++
	}
	if def.Repeat != nil {
		variants++
	}
	if variants != 1 {
		return zero, errors.WrapInvalid(
			fmt.Errorf("pattern %q element %d: exactly one of value/regex/range/any/ref/repeat required, got %d: %w",
				patternName, index, variants, errors.ErrInvalidConfig),
			"Loader", "Parse", "build element")
	}

	switch {
	case def.Value != nil:
		return pattern.Value(*def.Value), nil
	case def.Regex != "":
		re, err := l.compile(def.Regex)
		if err != nil {
			return zero, errors.WrapInvalid(
				fmt.Errorf("pattern %q element %d: %v: %w",
					patternName, index, err, errors.ErrInvalidConfig),
				"Loader", "Parse", "compile regex")
		}
		return pattern.Predicate(re.MatchString), nil
	case def.Range != nil:
		return pattern.Range(def.Range.Lo, def.Range.Hi), nil
	case def.Any:
		return pattern.Any[string](), nil
	case def.Ref != "":
		return pattern.Ref[string](def.Ref), nil
	default:
		inner, err := l.buildElement(patternName, index, def.Repeat)
		if err != nil {
			return zero, err
		}
		return pattern.Repeat(inner), nil
	}
}

// compile resolves a regular expression through the loader's cache.
func (l *Loader) compile(expr string) (*regexp.Regexp, error) {
	if re, ok := l.regexes.Get(expr); ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	if _, err := l.regexes.Set(expr, re); err != nil {
		return nil, err
	}
	return re, nil
}
