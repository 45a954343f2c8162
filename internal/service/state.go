package service

import (
	"fmt"
	"sync"

	"feedsight/internal/domain"
	"feedsight/internal/ingest"
)

// State is a stage of one analysis run.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateAnalyzing
	StateSynthesizing
	StateComplete
	StateFailed
)

var stateNames = [...]string{"idle", "validating", "analyzing", "synthesizing", "complete", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateComplete || s == StateFailed }

var transitions = map[State][]State{
	StateIdle:         {StateValidating},
	StateValidating:   {StateAnalyzing, StateFailed},
	StateAnalyzing:    {StateSynthesizing, StateFailed},
	StateSynthesizing: {StateComplete, StateFailed},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Run records the progress of a single analysis. It is single-use; the
// service drives it and callers may read it concurrently.
type Run struct {
	mu         sync.Mutex
	state      State
	history    []State
	err        error
	report     *domain.Report
	validation ingest.Result
}

func NewRun() *Run {
	return &Run{state: StateIdle, history: []State{StateIdle}}
}

func (r *Run) advance(to State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !canTransition(r.state, to) {
		return fmt.Errorf("illegal transition %s -> %s", r.state, to)
	}
	r.state = to
	r.history = append(r.history, to)
	return nil
}

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// History lists every state the run has entered, starting with idle.
func (r *Run) History() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.history...)
}

func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Report is nil unless the run completed.
func (r *Run) Report() *domain.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// Validation is the outcome of the validating stage.
func (r *Run) Validation() ingest.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validation
}
