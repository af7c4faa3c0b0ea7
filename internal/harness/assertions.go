package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stride/internal/model"
	"github.com/roach88/stride/internal/store"
)

// AssertionContext gives assertions access to the final store.
type AssertionContext struct {
	Ctx   context.Context
	Store *store.Store
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		outcome := "ok"
		if event.Error != nil {
			outcome = string(event.Error.Kind)
		}
		fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Step, event.As, event.Op, outcome)
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertPoints:
			err = assertPoints(result.Trace, a, actx)
		case AssertFinalState:
			err = assertFinalState(result.Trace, a, actx)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertPoints(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	got, err := actx.Store.Balances().Get(actx.Ctx, a.Owner)
	if err != nil {
		return err
	}
	if got != a.Points {
		return &AssertionError{
			Type:     AssertPoints,
			Expected: fmt.Sprintf("%s has %d points", a.Owner, a.Points),
			Actual:   fmt.Sprintf("%d points", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertFinalState(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	var (
		v   any
		ok  bool
		err error
	)
	switch a.Entity {
	case model.EntityTask:
		v, ok, err = get(actx, actx.Store.Tasks(), a.ID)
	case model.EntityHabit:
		v, ok, err = get(actx, actx.Store.Habits(), a.ID)
	case model.EntityReward:
		v, ok, err = get(actx, actx.Store.Rewards(), a.ID)
	case model.EntityTimeSlot:
		v, ok, err = get(actx, actx.Store.TimeSlots(), a.ID)
	default:
		return fmt.Errorf("final_state: unknown entity %q", a.Entity)
	}
	if err != nil {
		return err
	}
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s %s exists", a.Entity, a.ID),
			Actual:   "not found",
			Trace:    trace,
		}
	}
	if len(a.Expect) > 0 && !matchValue(a.Expect, v) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s %s with %v", a.Entity, a.ID, a.Expect),
			Actual:   canonicalString(v),
			Trace:    trace,
		}
	}
	return nil
}

func get[T any](actx *AssertionContext, c *store.Collection[T], id string) (any, bool, error) {
	v, ok, err := c.Get(actx.Ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return v, true, nil
}

// assertTraceCount checks that op appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, e := range trace {
		if e.Op == a.Op {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s appears %d times", a.Op, a.Count),
			Actual:   fmt.Sprintf("appears %d times", n),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that the ops appear in order. Other steps may
// come between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, e := range trace {
		if next < len(a.Ops) && e.Op == a.Ops[next] {
			next++
		}
	}
	if next < len(a.Ops) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("ops in order %v", a.Ops),
			Actual:   fmt.Sprintf("%s not found after %v", a.Ops[next], a.Ops[:next]),
			Trace:    trace,
		}
	}
	return nil
}

// matchValue reports whether actual matches want. Both are compared in
// their JSON form: maps in want match as subsets, everything else must be
// equal.
func matchValue(want, actual any) bool {
	return matchJSON(normalize(want), normalize(actual))
}

func matchJSON(want, actual any) bool {
	if wm, ok := want.(map[string]any); ok {
		am, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range wm {
			av, ok := am[k]
			if !ok || !matchJSON(wv, av) {
				return false
			}
		}
		return true
	}
	if wl, ok := want.([]any); ok {
		al, ok := actual.([]any)
		return ok && slices.EqualFunc(wl, al, matchJSON)
	}
	return canonicalString(want) == canonicalString(actual)
}

// normalize round-trips v through JSON so Go values and YAML-decoded
// values compare alike.
func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

func canonicalString(v any) string {
	b, err := model.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
