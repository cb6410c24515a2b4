// Package seqmatch provides sequence pattern matching over scrolling
// windows of arbitrary item types.
//
// # Overview
//
// A Matcher holds a fixed-capacity scrolling window of items and a set
// of declarative patterns. Patterns are ordered lists of elements
// (literal values, predicates, ranges, wildcards with gap bounds,
// references to other patterns, and nested repeats), each carrying
// quantifier settings (min/max repeat, greedy or lazy, optional) and an
// optional capture name. The engine scans the retained window with a
// backtracking search, resolves overlapping candidates by priority and
// per-pattern overlap policy, and reports accepted matches in absolute
// stream positions that never reset as the window slides.
//
// Extractor callbacks attached to pattern elements observe the match in
// progress and steer it: substitute a derived value for the matched
// subsequence, reposition the scan, discard the candidate, stop the
// run, or mutate the pattern set for the rest of the stream.
//
// # Layout
//
//   - pattern: pattern and element builders, quantifier settings
//   - window: the scrolling window ring buffer
//   - match: the Matcher engine, batch and streaming entry points
//   - ruleset: YAML pattern definitions for string matchers
//   - prefilter: Aho-Corasick literal screening for string patterns
//   - store: Postgres match journal
//   - processor/window_match: NATS component running a string matcher
//   - errors, health, metric: classified errors, health reporting,
//     Prometheus registry shared by the above
//   - pkg/cache, pkg/retry, pkg/worker, pkg/timestamp: generic
//     supporting utilities
//
// # Usage
//
//	m, err := match.New[string](128)
//	if err != nil { ... }
//
//	err = m.AddPattern(pattern.New("login-burst",
//		pattern.Value("fail").Times(3, 3).Capture("attempts"),
//		pattern.Any[string]().Gap(0, 2),
//		pattern.Value("lockout"),
//	))
//	if err != nil { ... }
//
//	for item := range items {
//		result, err := m.ProcessItem(item)
//		if err != nil { ... }
//		if result != nil {
//			// result.Pattern completed at result.End-1
//		}
//	}
//
// Batch scans over a fixed slice use FindMatches and FindNamed on the
// same Matcher.
//
// The seqmatch command under cmd/seqmatch runs rules files against
// stdin or a NATS subject.
package seqmatch
