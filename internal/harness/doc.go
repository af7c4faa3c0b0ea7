// Package harness runs stride scenarios.
//
// A scenario is a YAML script of engine operations performed by named
// callers against a fresh in-memory store, with a fake clock and sequential
// ids so that every run of the same script produces the same trace.
//
// # Scenario Format
//
//	name: habit_and_reward
//	description: "What this scenario shows"
//	start: "1970-01-05T00:00:00Z"   # optional, defaults to testutil.Epoch
//	setup:
//	  - op: grant_points
//	    args: { owner: alice, points: 10 }
//	steps:
//	  - as: alice
//	    op: add_task
//	    args: { title: Run, priority: Medium, deadline: 24h, estimated_time: 60, recurrence: daily }
//	    expect: { result: task-1 }
//	  - as: bob
//	    op: complete_task
//	    advance: 30m
//	    args: { id: task-1 }
//	    expect: { error: ACCESS }
//	assertions:
//	  - type: points
//	    owner: alice
//	    points: 4
//	  - type: final_state
//	    entity: Task
//	    id: task-1
//	    expect: { state: Created }
//
// Times in args are either absolute nanoseconds or a Go duration relative
// to the step's clock reading. Times of day are "HH:MM" or minutes.
//
// A step without expect must succeed. Mismatches and failed assertions are
// collected in Result.Errors rather than stopping the run.
//
// # Assertion Types
//
//   - points: an owner's balance equals points
//   - final_state: an entity's stored fields contain expect
//   - trace_count: op appears count times in the trace
//   - trace_order: ops appear in the given order
package harness
