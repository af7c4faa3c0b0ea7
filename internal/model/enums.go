package model

import (
	"fmt"
	"strings"
)

// Entity names used in errors and storage keys.
const (
	EntityTask     = "Task"
	EntityHabit    = "Habit"
	EntityReward   = "Reward"
	EntityTimeSlot = "TimeSlot"
)

// Priority scales the reward points a task earns.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Multiplier returns the reward multiplier for the priority, or 0 for an
// unknown value.
func (p Priority) Multiplier() uint32 {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	return p.Multiplier() != 0
}

// ParsePriority accepts a priority name in any letter case.
func ParsePriority(s string) (Priority, error) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// TaskState is a node of the task state machine.
type TaskState string

const (
	TaskCreated    TaskState = "Created"
	TaskInProgress TaskState = "InProgress"
	TaskCompleted  TaskState = "Completed"
	TaskOverdue    TaskState = "Overdue"
)

// RewardState is a node of the reward state machine.
type RewardState string

const (
	RewardActive    RewardState = "Active"
	RewardCompleted RewardState = "Completed"
)

// SlotType classifies calendar slots. Slots of different types may overlap.
type SlotType string

const (
	SlotBreak        SlotType = "Break"
	SlotWorkingHours SlotType = "WorkingHours"
)

// Valid reports whether t is a declared slot type.
func (t SlotType) Valid() bool {
	return t == SlotBreak || t == SlotWorkingHours
}

// ParseSlotType accepts a slot type name in any letter case.
func ParseSlotType(s string) (SlotType, error) {
	for _, t := range []SlotType{SlotBreak, SlotWorkingHours} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown slot type %q", s)
}

// Frequency selects how a recurrence repeats.
type Frequency string

const (
	FrequencyDaily  Frequency = "Daily"
	FrequencyCustom Frequency = "Custom"
)

// Weekday names a day of the week. Weekdays order Monday first.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var weekOrder = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the day's position in a Monday-first week, or -1 if the
// value is not a weekday.
func (d Weekday) Index() int {
	for i, w := range weekOrder {
		if w == d {
			return i
		}
	}
	return -1
}

// WeekdayOf returns the weekday at position i (mod 7) of a Monday-first week.
func WeekdayOf(i int) Weekday {
	return weekOrder[((i%7)+7)%7]
}

// ParseWeekday accepts a full day name or its three-letter prefix in any
// letter case.
func ParseWeekday(s string) (Weekday, error) {
	for _, d := range weekOrder {
		if strings.EqualFold(s, string(d)) || (len(s) == 3 && strings.EqualFold(s, string(d)[:3])) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}
