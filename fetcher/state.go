package fetcher

import "fmt"

// State is where a unit of crawl work is in its pipeline. Done, Skipped, and
// Failed are terminal.
type State int

const (
	StatePending State = iota
	StateResolving
	StateExpanding
	StateMatching
	StatePersisting
	StateReconciling
	StateDone
	StateSkipped
	StateFailed
)

var stateNames = [...]string{
	StatePending:     "PENDING",
	StateResolving:   "RESOLVING",
	StateExpanding:   "EXPANDING",
	StateMatching:    "MATCHING",
	StatePersisting:  "PERSISTING",
	StateReconciling: "RECONCILING",
	StateDone:        "DONE",
	StateSkipped:     "SKIPPED",
	StateFailed:      "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}

// Step is the result of one pipeline step that didn't error: either carry
// on, or stop here and skip the unit.
type Step struct {
	Skip   bool
	Reason string
}

var proceed = Step{}

func skip(format string, args ...any) Step {
	return Step{Skip: true, Reason: fmt.Sprintf(format, args...)}
}

// Outcome is how a unit of work ended.
type Outcome struct {
	SpotifyID string
	State     State

	// Last is the last non-terminal state reached.
	Last   State
	Reason string
	Err    error
}
