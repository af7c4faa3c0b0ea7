package harness

import "github.com/roach88/stride/internal/engine"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step   int         `json:"step"`
	As     string      `json:"as"`
	Op     string      `json:"op"`
	At     uint64      `json:"at"`
	OK     bool        `json:"ok"`
	Result any         `json:"result,omitempty"`
	Error  *TraceError `json:"error,omitempty"`
}

// TraceError is the error part of a failed step.
type TraceError struct {
	Kind    engine.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Snapshots hold the final state of every caller, sorted by owner.
	Snapshots []engine.Snapshot `json:"snapshots"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Snapshots: []engine.Snapshot{},
		Errors:    []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
