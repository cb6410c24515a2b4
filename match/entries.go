package match

import "time"

// FindMatches scans an explicit sequence against the active pattern set
// and returns every accepted match in position-pair form. The run uses
// fresh overlap/dedup state and does not touch the streaming window;
// positions in the results are indices into data.
func (m *Matcher[T]) FindMatches(data []T) ([]PositionMatch, error) {
	r, err := m.batchRun(data, "FindMatches")
	if err != nil {
		return nil, err
	}

	out := make([]PositionMatch, 0, len(r.accepted))
	for i := range r.accepted {
		raw := &r.accepted[i]
		out = append(out, PositionMatch{
			PatternIndex: raw.patternIndex,
			Pattern:      raw.name,
			Start:        raw.covered.start,
			End:          raw.covered.end,
		})
	}
	return out, nil
}

// FindNamed scans an explicit sequence and returns the named captures of
// every accepted match, grouped by pattern name. A pattern appears in the
// result once per accepted match, in acceptance order; a match without
// captures contributes a nil set.
func (m *Matcher[T]) FindNamed(data []T) (map[string][]CaptureSet[T], error) {
	r, err := m.batchRun(data, "FindNamed")
	if err != nil {
		return nil, err
	}

	out := make(map[string][]CaptureSet[T])
	for i := range r.accepted {
		raw := &r.accepted[i]
		out[raw.name] = append(out[raw.name], CaptureSet[T](raw.captures))
	}
	return out, nil
}

func (m *Matcher[T]) batchRun(data []T, method string) (*run[T], error) {
	if err := m.requirePatterns(method); err != nil {
		return nil, err
	}

	started := time.Now()
	r := m.newRun(data, 0, newResolver(), false)
	err := r.scan(0)
	m.metrics.recordScan("batch", time.Since(started))
	if err != nil {
		m.metrics.recordError()
		m.logger.Error("scan failed", "method", method, "error", err)
		return nil, err
	}
	r.commit()
	for i := range r.accepted {
		m.metrics.recordMatch(r.accepted[i].name)
	}
	return r, nil
}

// ProcessItem pushes one item into the scrolling window, scans the
// retained window, and returns the first match that completes at the
// pushed item, or nil when none does. When the completing candidate
// carried an Extract action the result holds the substituted value;
// otherwise it holds the raw matched subsequence.
func (m *Matcher[T]) ProcessItem(item T) (*Result[T], error) {
	if err := m.requirePatterns("ProcessItem"); err != nil {
		return nil, err
	}

	m.window.Push(item)
	m.itemsProcessed++
	m.metrics.recordItem(m.window.Len())
	m.stream.prune(m.window.Start())

	data := m.window.Items()
	base := m.window.Start()
	from := 0
	if m.scanFloor > base {
		from = int(m.scanFloor - base)
	}

	started := time.Now()
	r := m.newRun(data, base, m.stream, true)
	err := r.scan(from)
	m.metrics.recordScan("stream", time.Since(started))
	if err != nil {
		m.metrics.recordError()
		m.logger.Error("scan failed", "method", "ProcessItem", "error", err)
		return nil, err
	}
	r.commit()
	m.scanFloor = r.floor
	for i := range r.accepted {
		m.metrics.recordMatch(r.accepted[i].name)
	}

	end := m.window.End()
	for i := range r.accepted {
		if r.accepted[i].covered.end == end {
			res := r.accepted[i].toResult()
			return &res, nil
		}
	}
	return nil, nil
}

// ProcessItems pushes items through ProcessItem in order and returns
// every completion produced along the way.
func (m *Matcher[T]) ProcessItems(items []T) ([]Result[T], error) {
	var out []Result[T]
	for _, item := range items {
		res, err := m.ProcessItem(item)
		if err != nil {
			return out, err
		}
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *rawMatch[T]) toResult() Result[T] {
	return Result[T]{
		Pattern:   m.name,
		Start:     m.covered.start,
		End:       m.covered.end,
		Items:     m.items,
		Value:     m.value,
		Extracted: m.extracted,
		Captures:  CaptureSet[T](m.captures),
	}
}
