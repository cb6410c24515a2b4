package match

// Action is the control-flow decision an extractor returns to the engine.
// Use the package-level constructors (Continue, Extract, Skip, Jump,
// Restart, Discard, Stop, AddPattern, RemovePattern); the concrete types
// are not exported so the action set stays closed.
type Action interface {
	isAction()
}

type continueAction struct{}

type extractAction struct {
	value any
}

type skipAction struct {
	n int
}

type jumpAction struct {
	delta int
}

type restartAction struct {
	pos int64
}

type discardAction struct{}

type stopAction struct{}

type addPatternAction struct {
	// pattern holds a pattern.Pattern[T]; the engine asserts the element
	// type at interpretation time.
	pattern any
}

type removePatternAction struct {
	name string
}

func (continueAction) isAction()      {}
func (extractAction) isAction()       {}
func (skipAction) isAction()          {}
func (jumpAction) isAction()          {}
func (restartAction) isAction()       {}
func (discardAction) isAction()       {}
func (stopAction) isAction()          {}
func (addPatternAction) isAction()    {}
func (removePatternAction) isAction() {}

// Continue proceeds exactly as if no extractor were attached.
var Continue Action = continueAction{}

// Discard abandons only the current candidate match; scanning continues at
// the next start position.
var Discard Action = discardAction{}

// Stop ends the entire run. Results accumulated so far are returned, not
// discarded.
var Stop Action = stopAction{}

// Extract completes the in-progress match immediately and substitutes
// value for the raw matched subsequence. The value's dynamic type must be
// the matcher's element type.
func Extract(value any) Action {
	return extractAction{value: value}
}

// Skip discards the in-progress candidate and resumes the outer scan n
// positions past the current one. Negative n is an invalid-position
// error.
func Skip(n int) Action {
	return skipAction{n: n}
}

// Jump resumes the outer scan at the current position plus delta. The
// target must fall within the currently retained range.
func Jump(delta int) Action {
	return jumpAction{delta: delta}
}

// Restart abandons the in-progress match and resumes pattern evaluation
// from the given absolute position, re-seeding accumulated scan state.
func Restart(pos int64) Action {
	return restartAction{pos: pos}
}

// AddPattern admits p to the active pattern set for subsequent scan
// positions within the same run. The pattern is validated, including
// reference cycle detection, before taking effect.
func AddPattern(p any) Action {
	return addPatternAction{pattern: p}
}

// RemovePattern removes the named pattern from the active set for
// subsequent scan positions. Removing a pattern still referenced by
// another active pattern is rejected.
func RemovePattern(name string) Action {
	return removePatternAction{name: name}
}
