package match

import (
	"fmt"
	"sort"
	"strings"
)

// span is an absolute covered position range, end exclusive.
type span struct {
	start int64
	end   int64
}

func (s span) intersects(o span) bool {
	return s.start < o.end && o.start < s.end
}

// matchKey identifies an accepted match for re-emission suppression in
// streaming mode.
type matchKey struct {
	name  string
	start int64
	end   int64
}

// resolver applies the overlap and deduplication policy to candidate
// matches in discovery order. Batch runs use a fresh resolver; streaming
// runs reuse one across ProcessItem calls, pruned as the window slides.
type resolver struct {
	// accepted covers every accepted match, consulted when a candidate's
	// pattern forbids overlapping others.
	accepted []span

	// exclusive covers accepted matches whose pattern forbids others from
	// overlapping them; candidates intersecting these are rejected
	// regardless of their own overlap flag.
	exclusive []span

	// dedup maps pattern name to the identity keys of its accepted
	// matches, consulted when the pattern deduplicates.
	dedup map[string]map[string]struct{}

	// emitted records accepted matches so a streaming rescan of the same
	// window region does not re-accept them.
	emitted map[matchKey]struct{}
}

func newResolver() *resolver {
	return &resolver{
		dedup:   make(map[string]map[string]struct{}),
		emitted: make(map[matchKey]struct{}),
	}
}

// seen reports whether the match was already accepted by an earlier scan
// over the same window region.
func (r *resolver) seen(name string, sp span) bool {
	_, ok := r.emitted[matchKey{name: name, start: sp.start, end: sp.end}]
	return ok
}

// spanRecord carries the policy-relevant identity of a candidate match.
type spanRecord struct {
	name     string
	covered  span
	captures map[string]span
}

// admitMatch applies rules 1-3 of the overlap/dedup policy. Policy flags
// are passed in rather than the pattern itself so the resolver stays
// non-generic.
func (r *resolver) admitMatch(overlapWithOthers, othersMayOverlap, deduplicate bool, m *spanRecord) bool {
	for _, ex := range r.exclusive {
		if m.covered.intersects(ex) {
			return false
		}
	}
	if !overlapWithOthers {
		for _, acc := range r.accepted {
			if m.covered.intersects(acc) {
				return false
			}
		}
	}
	if deduplicate {
		key := dedupKey(m)
		seen := r.dedup[m.name]
		if seen == nil {
			seen = make(map[string]struct{})
			r.dedup[m.name] = seen
		}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}

	r.accepted = append(r.accepted, m.covered)
	if !othersMayOverlap {
		r.exclusive = append(r.exclusive, m.covered)
	}
	r.emitted[matchKey{name: m.name, start: m.covered.start, end: m.covered.end}] = struct{}{}
	return true
}

// dedupKey builds the identity of a match for deduplication: the covered
// range plus every capture's absolute sub-range. Two matches over one
// window with identical keys necessarily captured identical content.
func dedupKey(m *spanRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-%d", m.covered.start, m.covered.end)
	if len(m.captures) > 0 {
		names := make([]string, 0, len(m.captures))
		for name := range m.captures {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sp := m.captures[name]
			fmt.Fprintf(&b, "|%s:%d-%d", name, sp.start, sp.end)
		}
	}
	return b.String()
}

// prune drops state that can no longer affect candidates, which always
// lie within the retained window starting at oldest.
func (r *resolver) prune(oldest int64) {
	r.accepted = pruneSpans(r.accepted, oldest)
	r.exclusive = pruneSpans(r.exclusive, oldest)
	for key := range r.emitted {
		if key.end <= oldest {
			delete(r.emitted, key)
		}
	}
}

func pruneSpans(spans []span, oldest int64) []span {
	kept := spans[:0]
	for _, sp := range spans {
		if sp.end > oldest {
			kept = append(kept, sp)
		}
	}
	return kept
}

// reset clears all resolver state, used when a Restart action re-seeds
// the scan.
func (r *resolver) reset() {
	r.accepted = r.accepted[:0]
	r.exclusive = r.exclusive[:0]
	r.dedup = make(map[string]map[string]struct{})
	r.emitted = make(map[matchKey]struct{})
}
