package model

import (
	"errors"
	"fmt"
)

// Reason explains why a field failed validation.
type Reason string

const (
	ReasonEmpty              Reason = "Empty"
	ReasonTooLong            Reason = "TooLong"
	ReasonInvalidCharacters  Reason = "InvalidCharacters"
	ReasonUnknown            Reason = "Unknown"
	ReasonPastDeadline       Reason = "PastDeadline"
	ReasonTooFarInFuture     Reason = "TooFarInFuture"
	ReasonBeforeEndTime      Reason = "BeforeEndTime"
	ReasonZero               Reason = "Zero"
	ReasonEndBeforeStart     Reason = "EndBeforeStart"
	ReasonOverlappingSlots   Reason = "OverlappingSlots"
	ReasonDuplicateID        Reason = "DuplicateId"
	ReasonCircularDependency Reason = "CircularDependency"
	ReasonInvalid            Reason = "Invalid"
	ReasonEmptyDays          Reason = "EmptyDays"
	ReasonInvalidPattern     Reason = "InvalidPattern"
	ReasonInvalidTimeOfDay   Reason = "InvalidTimeOfDay"
)

var reasonText = map[Reason]string{
	ReasonEmpty:              "must not be empty",
	ReasonTooLong:            "is too long",
	ReasonInvalidCharacters:  "contains control characters or invalid UTF-8",
	ReasonUnknown:            "is not a known value",
	ReasonPastDeadline:       "is not in the future",
	ReasonTooFarInFuture:     "is more than 365 days ahead",
	ReasonBeforeEndTime:      "is not after the last scheduled slot",
	ReasonZero:               "must be greater than zero",
	ReasonEndBeforeStart:     "ends before it starts",
	ReasonOverlappingSlots:   "contains overlapping slots",
	ReasonDuplicateID:        "contains a duplicate id",
	ReasonCircularDependency: "would create a cycle",
	ReasonInvalid:            "is invalid",
	ReasonEmptyDays:          "needs at least one day",
	ReasonInvalidPattern:     "is not a valid recurrence",
	ReasonInvalidTimeOfDay:   "is not a valid time of day",
}

// FieldError reports the first field of an entity that failed validation.
type FieldError struct {
	Entity string
	Field  string
	Reason Reason
	// Value is the offending value rendered for diagnostics, if any.
	Value string
}

func (e *FieldError) Error() string {
	text, ok := reasonText[e.Reason]
	if !ok {
		text = string(e.Reason)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s %s %s (%s)", e.Entity, e.Field, text, e.Value)
	}
	return fmt.Sprintf("%s %s %s", e.Entity, e.Field, text)
}

func fieldErr(entity, field string, reason Reason, value any) *FieldError {
	fe := &FieldError{Entity: entity, Field: field, Reason: reason}
	if value != nil {
		fe.Value = fmt.Sprint(value)
	}
	return fe
}

// TransitionError is returned when a state machine has no edge between two
// states.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// Action names a mutation checked against an entity's current state.
type Action string

const (
	ActionUpdate   Action = "Update"
	ActionComplete Action = "Complete"
	ActionDelete   Action = "Delete"
	ActionRedeem   Action = "Redeem"
)

// ActionError is returned when an action is not allowed in the entity's
// current state.
type ActionError struct {
	Entity string
	State  string
	Action Action
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("cannot %s a %s %s", e.Action, e.State, e.Entity)
}

// ErrNotOwner is returned when the caller does not own the entity.
var ErrNotOwner = errors.New("caller is not the owner")

// CheckOwner returns ErrNotOwner unless caller equals owner.
func CheckOwner(owner, caller string) error {
	if owner != caller {
		return ErrNotOwner
	}
	return nil
}
