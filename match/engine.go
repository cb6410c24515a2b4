package match

import (
	"fmt"

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/pattern"
)

// sigKind classifies a scan-level control flow change requested by an
// extractor action.
type sigKind int

const (
	sigNone sigKind = iota
	// sigMove resumes the outer scan at another position.
	sigMove
	// sigRestart resumes at another position and re-seeds accumulated
	// scan state.
	sigRestart
	// sigStop ends the run.
	sigStop
)

// scanSignal carries an extractor-requested control flow change out of
// the backtracking search to the scan loop.
type scanSignal struct {
	kind sigKind
	// next is the data index to resume at.
	next int
	// forwardOnly marks moves that must strictly advance the scan (Skip).
	forwardOnly bool
	// abs is the absolute restart target, persisted as the streaming
	// scan floor.
	abs int64
}

// run is one scan over a data slice: a snapshot of the active pattern
// set, the resolver in effect, and the matches accepted so far. base is
// the absolute position of data[0].
type run[T any] struct {
	m         *Matcher[T]
	data      []T
	base      int64
	active    []pattern.Pattern[T]
	res       *resolver
	accepted  []rawMatch[T]
	streaming bool
	// floor is the absolute scan floor after the run, updated by Restart.
	floor int64
}

func (m *Matcher[T]) newRun(data []T, base int64, res *resolver, streaming bool) *run[T] {
	active := make([]pattern.Pattern[T], len(m.patterns))
	copy(active, m.patterns)
	return &run[T]{
		m:         m,
		data:      data,
		base:      base,
		active:    active,
		res:       res,
		streaming: streaming,
		floor:     m.scanFloor,
	}
}

// commit writes run-local pattern set mutations back to the matcher.
// Called only after an error-free run so a failed scan leaves the
// matcher's pattern set intact.
func (r *run[T]) commit() {
	r.m.patterns = r.active
}

// ordered returns active pattern indices sorted by effective priority,
// stable in registration order.
func (r *run[T]) ordered() []int {
	order := make([]int, len(r.active))
	for i := range order {
		order[i] = i
	}
	// insertion sort keeps registration order among equal priorities
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := &r.active[order[j-1]], &r.active[order[j]]
			if a.EffectivePriority() <= b.EffectivePriority() {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
	return order
}

func (r *run[T]) findPattern(name string) *pattern.Pattern[T] {
	for i := range r.active {
		if r.active[i].Name == name {
			return &r.active[i]
		}
	}
	return nil
}

// scan slides the candidate start position across the data, trying every
// active pattern at each start in priority order and resolving candidates
// against the overlap/dedup policy as they are discovered.
func (r *run[T]) scan(from int) error {
	s := from
	for s < len(r.data) {
		next := s + 1
		var sig scanSignal
		for _, pi := range r.ordered() {
			p := &r.active[pi]
			m, err := r.matchPattern(p, pi, s, &sig)
			if err != nil {
				return err
			}
			if sig.kind != sigNone {
				break
			}
			if m == nil {
				continue
			}
			if r.streaming && r.res.seen(m.name, m.covered) {
				continue
			}
			if r.res.admitMatch(p.OverlapWithOthers, p.OthersMayOverlap, p.Deduplicate, &spanRecord{
				name:     m.name,
				covered:  m.covered,
				captures: m.captureSpans,
			}) {
				r.accepted = append(r.accepted, *m)
				if p.OnMatch != nil {
					p.OnMatch(pattern.MatchInfo[T]{
						Pattern:  m.name,
						Start:    m.covered.start,
						End:      m.covered.end,
						Items:    m.items,
						Captures: m.captures,
					})
				}
			}
		}
		switch sig.kind {
		case sigStop:
			return nil
		case sigMove:
			next = sig.next
			if sig.forwardOnly && next <= s {
				next = s + 1
			}
			r.floor = r.base + int64(next)
		case sigRestart:
			r.res.reset()
			r.floor = sig.abs
			next = sig.next
		}
		s = next
	}
	return nil
}

// matchPattern attempts one candidate of p starting at data index s. It
// returns the materialized match on success, nil on plain mismatch or
// discard, and records extractor-requested scan movement in sig.
func (r *run[T]) matchPattern(p *pattern.Pattern[T], patternIndex, s int, sig *scanSignal) (*rawMatch[T], error) {
	a := &attempt[T]{
		r:     r,
		start: s,
		caps:  make(map[string]span),
		sig:   sig,
	}
	end := a.seq(p, 0, s)
	if a.err != nil {
		return nil, a.err
	}
	if a.discarded || sig.kind != sigNone {
		return nil, nil
	}
	if end < 0 {
		return nil, nil
	}

	m := &rawMatch[T]{
		patternIndex: patternIndex,
		name:         p.Name,
		covered:      span{start: r.base + int64(s), end: r.base + int64(end)},
		items:        copySlice(r.data[s:end]),
		captureSpans: a.caps,
		captures:     r.materialize(a.caps),
		value:        a.value,
		extracted:    a.extracted,
	}
	return m, nil
}

// materialize copies the captured sub-ranges out of the run's data so
// results stay valid after the window slides.
func (r *run[T]) materialize(caps map[string]span) map[string][]T {
	if len(caps) == 0 {
		return nil
	}
	out := make(map[string][]T, len(caps))
	for name, sp := range caps {
		out[name] = copySlice(r.data[sp.start-r.base : sp.end-r.base])
	}
	return out
}

func copySlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// attempt is the backtracking state of one candidate match.
type attempt[T any] struct {
	r     *run[T]
	start int
	caps  map[string]span
	sig   *scanSignal

	err       error
	discarded bool
	extracted bool
	value     T
}

// halted reports whether the search must unwind without trying further
// alternatives.
func (a *attempt[T]) halted() bool {
	return a.err != nil || a.discarded || a.sig.kind != sigNone
}

// seq matches p.Elements[idx:] beginning at data index pos. It returns
// the end index of the completed remainder, or -1 when no alternative
// completes. Greedy elements try repeat counts from the highest
// admissible downward, lazy elements upward; the first count that lets
// the remainder complete wins, so greedy deterministically prefers the
// longest feasible count.
func (a *attempt[T]) seq(p *pattern.Pattern[T], idx, pos int) int {
	if idx == len(p.Elements) {
		return pos
	}
	el := &p.Elements[idx]
	lo, hi := a.repeatRange(el, pos)
	if lo > hi {
		return -1
	}

	if el.Settings.Greedy {
		for n := hi; n >= lo; n-- {
			end := a.tryCount(p, el, idx, n, pos)
			if end >= 0 || a.halted() || a.extracted {
				return end
			}
		}
	} else {
		for n := lo; n <= hi; n++ {
			end := a.tryCount(p, el, idx, n, pos)
			if end >= 0 || a.halted() || a.extracted {
				return end
			}
		}
	}
	return -1
}

// tryCount consumes exactly n repeats of el at pos and then requires the
// rest of the pattern to complete. The capture map is snapshotted before
// descending and restored when the alternative fails, so repeated
// captures of one name within a match overwrite in element order and
// only the successful path's captures survive, including captures
// recorded inside Ref and Repeat units.
func (a *attempt[T]) tryCount(p *pattern.Pattern[T], el *pattern.Element[T], idx, n, pos int) int {
	saved := a.snapshotCaps()

	rest := a.units(p, el, idx, n, pos, func(end int) int {
		if !a.extracted && el.Settings.ExtractorID != pattern.NoExtractor {
			end = a.consult(p, el, idx, pos, end)
			if end < 0 {
				return -1
			}
		}
		if name := el.Settings.CaptureName; name != "" {
			a.caps[name] = span{start: a.r.base + int64(pos), end: a.r.base + int64(end)}
		}
		if a.extracted {
			return end
		}
		return a.seq(p, idx+1, end)
	})
	if a.halted() {
		return -1
	}
	if rest < 0 {
		a.caps = saved
	}
	return rest
}

func (a *attempt[T]) snapshotCaps() map[string]span {
	saved := make(map[string]span, len(a.caps))
	for k, v := range a.caps {
		saved[k] = v
	}
	return saved
}

// units matches exactly n repeats of el starting at pos and hands the
// end index to rest, which carries the element's extractor, its capture,
// and the remainder of the pattern. Consuming is a single item per repeat
// for the leaf kinds, one completion of the referenced pattern for Ref,
// and one quantified inner match for Repeat. Repeat units enumerate their
// inner counts against rest, so a failing remainder reopens a nested
// completion and tries the next admissible inner count; Ref units commit
// to the referenced pattern's own first completion.
func (a *attempt[T]) units(p *pattern.Pattern[T], el *pattern.Element[T], idx, n, pos int, rest func(int) int) int {
	if n == 0 {
		return rest(pos)
	}
	next := func(end int) int {
		if a.extracted {
			return rest(end)
		}
		return a.units(p, el, idx, n-1, end, rest)
	}

	switch el.Kind {
	case pattern.KindRef:
		ref := a.r.findPattern(el.RefName)
		if ref == nil {
			a.err = errors.WrapInvalid(
				fmt.Errorf("pattern %q references %q: %w", p.Name, el.RefName, errors.ErrUnknownPattern),
				"Matcher", "scan", "resolve reference")
			return -1
		}
		end := a.seq(ref, 0, pos)
		if a.halted() || end < 0 {
			return -1
		}
		return next(end)

	case pattern.KindRepeat:
		inner := el.Inner
		lo, hi := a.repeatRange(inner, pos)
		if lo > hi {
			return -1
		}
		innerRest := func(end int) int {
			if !a.extracted && inner.Settings.ExtractorID != pattern.NoExtractor {
				end = a.consult(p, inner, idx, pos, end)
				if end < 0 {
					return -1
				}
			}
			if name := inner.Settings.CaptureName; name != "" {
				a.caps[name] = span{start: a.r.base + int64(pos), end: a.r.base + int64(end)}
			}
			return next(end)
		}
		if inner.Settings.Greedy {
			for cnt := hi; cnt >= lo; cnt-- {
				end := a.units(p, inner, idx, cnt, pos, innerRest)
				if end >= 0 || a.halted() || a.extracted {
					return end
				}
			}
		} else {
			for cnt := lo; cnt <= hi; cnt++ {
				end := a.units(p, inner, idx, cnt, pos, innerRest)
				if end >= 0 || a.halted() || a.extracted {
					return end
				}
			}
		}
		return -1

	default:
		if pos >= len(a.r.data) {
			return -1
		}
		if el.Test(a.r.data[pos]) {
			return next(pos + 1)
		}
		return -1
	}
}

// repeatRange resolves the admissible repeat count range of el at pos.
// Any elements with a non-zero gap range repeat per their gap bounds; an
// unbounded maximum is capped by the remaining window length.
func (a *attempt[T]) repeatRange(el *pattern.Element[T], pos int) (int, int) {
	s := el.Settings
	lo, hi := s.MinRepeat, s.MaxRepeat
	if el.Kind == pattern.KindAny && (s.MinGap != 0 || s.MaxGap != 0) {
		lo, hi = s.MinGap, s.MaxGap
	}
	remaining := len(a.r.data) - pos
	if hi == pattern.Unbounded || hi > remaining {
		hi = remaining
	}
	return lo, hi
}

// buildState assembles the extractor-visible snapshot at an
// element-evaluation event ending at data index end.
func (a *attempt[T]) buildState(p *pattern.Pattern[T], el *pattern.Element[T], idx, end int) *MatchState[T] {
	var item T
	if end > a.start {
		item = a.r.data[end-1]
	}
	return &MatchState[T]{
		Pos:            a.r.base + int64(end),
		Start:          a.r.base + int64(a.start),
		Item:           item,
		Matched:        copySlice(a.r.data[a.start:end]),
		Pattern:        p.Name,
		ElementIndex:   idx,
		ItemsProcessed: a.r.m.itemsProcessed,
		Context:        a.r.m.context,
		Timeout:        el.Settings.Timeout,
	}
}

// consult invokes the element's extractor and interprets the returned
// action. It returns the (possibly unchanged) end index when matching
// should proceed and -1 when the candidate ends here for any reason.
func (a *attempt[T]) consult(p *pattern.Pattern[T], el *pattern.Element[T], idx, pos, end int) int {
	id := el.Settings.ExtractorID
	fn, ok := a.r.m.extractors[id]
	if !ok {
		a.err = errors.WrapInvalid(
			fmt.Errorf("pattern %q element %d: extractor %d: %w",
				p.Name, idx, id, errors.ErrExtractorNotFound),
			"Matcher", "scan", "resolve extractor")
		return -1
	}

	action, err := invoke(fn, a.buildState(p, el, idx, end))
	if err != nil {
		a.err = errors.WrapFatal(
			fmt.Errorf("pattern %q element %d extractor %d: %v: %w",
				p.Name, idx, id, err, errors.ErrExtractorFailed),
			"Matcher", "scan", "invoke extractor")
		return -1
	}

	switch act := action.(type) {
	case continueAction:
		return end

	case extractAction:
		v, ok := act.value.(T)
		if !ok {
			a.err = errors.WrapFatal(
				fmt.Errorf("pattern %q extractor %d returned value of type %T: %w",
					p.Name, id, act.value, errors.ErrExtractorFailed),
				"Matcher", "scan", "convert extracted value")
			return -1
		}
		a.extracted = true
		a.value = v
		return end

	case skipAction:
		if act.n < 0 {
			a.err = a.positionError(fmt.Sprintf("skip by %d", act.n))
			return -1
		}
		a.sig.kind = sigMove
		a.sig.next = end + act.n
		a.sig.forwardOnly = true
		return -1

	case jumpAction:
		target := a.r.base + int64(end) + int64(act.delta)
		if target < a.r.base || target > a.r.base+int64(len(a.r.data)) {
			a.err = a.positionError(fmt.Sprintf("jump to %d", target))
			return -1
		}
		a.sig.kind = sigMove
		a.sig.next = int(target - a.r.base)
		return -1

	case restartAction:
		if act.pos < a.r.base || act.pos > a.r.base+int64(len(a.r.data)) {
			a.err = a.positionError(fmt.Sprintf("restart from %d", act.pos))
			return -1
		}
		a.sig.kind = sigRestart
		a.sig.next = int(act.pos - a.r.base)
		a.sig.abs = act.pos
		return -1

	case discardAction:
		a.discarded = true
		return -1

	case stopAction:
		a.sig.kind = sigStop
		return -1

	case addPatternAction:
		np, ok := act.pattern.(pattern.Pattern[T])
		if !ok {
			a.err = errors.WrapFatal(
				fmt.Errorf("extractor %d added pattern of type %T: %w",
					id, act.pattern, errors.ErrExtractorFailed),
				"Matcher", "scan", "convert added pattern")
			return -1
		}
		if err := a.r.addPattern(np); err != nil {
			a.err = err
			return -1
		}
		return end

	case removePatternAction:
		if err := a.r.removePattern(act.name); err != nil {
			a.err = err
			return -1
		}
		return end

	default:
		a.err = errors.WrapFatal(
			fmt.Errorf("extractor %d returned unknown action %T: %w",
				id, action, errors.ErrExtractorFailed),
			"Matcher", "scan", "interpret action")
		return -1
	}
}

func (a *attempt[T]) positionError(detail string) error {
	return errors.WrapInvalid(
		fmt.Errorf("%s with window [%d, %d): %w",
			detail, a.r.base, a.r.base+int64(len(a.r.data)), errors.ErrInvalidPosition),
		"Matcher", "scan", "move scan position")
}

// invoke calls an extractor with panic recovery so a faulty callback
// surfaces as an error instead of tearing down the caller.
func invoke[T any](fn ExtractorFunc[T], state *MatchState[T]) (action Action, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extractor panicked: %v", rec)
		}
	}()
	return fn(state)
}

// addPattern admits a pattern to the run's active set with the same
// validation as Matcher.AddPattern; the mutation affects subsequent scan
// positions and is committed to the matcher when the run finishes
// cleanly.
func (r *run[T]) addPattern(p pattern.Pattern[T]) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := checkReferences(p, r.active); err != nil {
		return err
	}
	for i := range r.active {
		if r.active[i].Name == p.Name {
			r.active[i] = p
			return nil
		}
	}
	r.active = append(r.active, p)
	return nil
}

// removePattern drops a pattern from the run's active set, refusing to
// dangle another active pattern's reference.
func (r *run[T]) removePattern(name string) error {
	idx := -1
	for i := range r.active {
		if r.active[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("pattern %q: %w", name, errors.ErrUnknownPattern),
			"Matcher", "scan", "remove pattern")
	}
	for i := range r.active {
		if i == idx {
			continue
		}
		for _, ref := range r.active[i].References() {
			if ref == name {
				return errors.WrapInvalid(
					fmt.Errorf("pattern %q is referenced by %q: %w",
						name, r.active[i].Name, errors.ErrPatternInUse),
					"Matcher", "scan", "remove pattern")
			}
		}
	}
	r.active = append(r.active[:idx], r.active[idx+1:]...)
	return nil
}
