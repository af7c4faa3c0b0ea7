package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/store"
	"github.com/roach88/stride/internal/testutil"
)

// runner holds the engine and collaborators for one scenario run.
type runner struct {
	store *store.Store
	eng   *engine.Engine
	clock *testutil.FakeClock
}

// Run executes a scenario against a fresh in-memory store and returns the
// result.
//
// Execution flow:
//  1. Create a memory store, a FakeClock at the scenario start and
//     sequential ids
//  2. Run setup steps, which must succeed
//  3. Run steps, recording each in the trace and checking its expect clause
//  4. Snapshot every caller
//  5. Evaluate assertions
//
// Malformed scenarios and step arguments are returned as errors. Failed
// expectations are collected in the result.
func Run(scenario *Scenario) (*Result, error) {
	start := testutil.Epoch
	if scenario.Start != "" {
		t, err := time.Parse(time.RFC3339, scenario.Start)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		start = t
	}

	st := store.NewMemory()
	defer st.Close()
	clock := testutil.NewFakeClock(start)
	r := &runner{
		store: st,
		clock: clock,
		eng: engine.New(st, nil,
			engine.WithClock(clock),
			engine.WithIDs(engine.NewSequenceIDs()),
			engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Setup {
		if _, err := r.exec(ctx, step); err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i+1, step.Op, err)
		}
	}

	var owners []string
	for i, step := range scenario.Steps {
		event, err := r.step(ctx, i+1, step)
		if err != nil {
			return nil, err
		}
		result.Trace = append(result.Trace, event)
		if msg := checkExpect(step, event); msg != "" {
			result.AddError(fmt.Sprintf("step %d (%s): %s", event.Step, step.Op, msg))
		}
		if !slices.Contains(owners, step.As) {
			owners = append(owners, step.As)
		}
	}

	slices.Sort(owners)
	for _, owner := range owners {
		snap, err := r.eng.Snapshot(engine.WithCaller(ctx, owner), owner)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", owner, err)
		}
		result.Snapshots = append(result.Snapshots, snap)
	}

	actx := &AssertionContext{Ctx: ctx, Store: st}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// step advances the clock, runs one traced step and records its outcome.
func (r *runner) step(ctx context.Context, n int, step Step) (TraceEvent, error) {
	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return TraceEvent{}, fmt.Errorf("step %d: advance: %w", n, err)
		}
		r.clock.Advance(d)
	}

	event := TraceEvent{Step: n, As: step.As, Op: step.Op, At: r.clock.Nanos()}
	res, err := r.exec(ctx, step)
	var ee *engine.Error
	switch {
	case err == nil:
		event.OK = true
		event.Result = res
	case errors.As(err, &ee):
		event.Error = &TraceError{Kind: ee.Kind, Message: ee.Message}
	default:
		return TraceEvent{}, fmt.Errorf("step %d (%s): %w", n, step.Op, err)
	}
	return event, nil
}

// exec runs the step's operation as its caller.
func (r *runner) exec(ctx context.Context, step Step) (any, error) {
	op, ok := operations[step.Op]
	if !ok {
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
	a := args{m: step.Args, now: r.clock.Nanos()}
	if a.m == nil {
		a.m = map[string]any{}
	}
	return op(engine.WithCaller(ctx, step.As), r, step.As, a)
}

// checkExpect compares an event with the step's expect clause and returns a
// description of the mismatch, or "".
func checkExpect(step Step, event TraceEvent) string {
	want := step.Expect
	if want == nil || want.Error == "" {
		if event.Error != nil {
			return fmt.Sprintf("expected success, got %s: %s", event.Error.Kind, event.Error.Message)
		}
		if want != nil && want.Result != nil && !matchValue(want.Result, event.Result) {
			return fmt.Sprintf("result mismatch: expected %v, got %s", want.Result, canonicalString(event.Result))
		}
		return ""
	}
	if event.Error == nil {
		return fmt.Sprintf("expected %s error, got success", want.Error)
	}
	if string(event.Error.Kind) != want.Error {
		return fmt.Sprintf("expected %s error, got %s: %s", want.Error, event.Error.Kind, event.Error.Message)
	}
	return ""
}
