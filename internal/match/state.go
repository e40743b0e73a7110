// Package match implements MatchState (spec.md §3): the slice context
// threaded through the Evaluator's recursion. Values are immutable by
// construction; descending into a sub-rule always produces a new State
// rather than mutating the parent's.
package match

// State carries the inherited matchStart/matchStop window. The root
// state has Start = 0, Stop = 0 ("to end").
type State struct {
	Start int32
	Stop  int32
}

// Root constructs the initial MatchState for a path (spec.md §3).
func Root(path string) State {
	return State{Start: 0, Stop: 0}
}

// WithWindow returns a copy of s with Start/Stop overridden when the
// given rule specifies matchStart/matchStop (nil means "inherit").
func (s State) WithWindow(start, stop *int32) State {
	next := s
	if start != nil {
		next.Start = *start
	}
	if stop != nil {
		next.Stop = *stop
	}
	return next
}
