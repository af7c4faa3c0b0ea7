// Package model defines stride's entities and the rules that keep them
// consistent: tasks with subtasks and time-boxing, habits derived from
// recurring tasks, point-priced rewards, and a calendar of time slots.
//
// Entities are plain values. Each one carries a Validate method that runs a
// fixed pipeline (title, description, type-specific checks, storage quota)
// and stops at the first failure. Validation normalizes as it goes: titles
// and descriptions are trimmed in place on success, so calling Validate twice
// on a valid entity is a no-op the second time.
//
// Validation needs two things from its surroundings, the current time and an
// admission check for the entity's storage footprint. Both come through Env,
// which the engine implements per operation.
//
// Timestamps are nanoseconds since the Unix epoch. Time slots on the
// calendar use minutes of the day instead, in [0, 1440), and may wrap past
// midnight when the end is earlier than the start.
package model
