package model

import "fmt"

// TimeSlot is a recurring block of the day, in minutes since midnight. A slot
// whose end is earlier than its start wraps past midnight.
type TimeSlot struct {
	ID           string     `json:"id"`
	StartMinutes uint32     `json:"start_minutes"`
	EndMinutes   uint32     `json:"end_minutes"`
	Duration     uint32     `json:"duration"`
	Recurrence   Recurrence `json:"recurrence"`
	SlotType     SlotType   `json:"slot_type"`
	Owner        string     `json:"owner"`
}

// NewTimeSlot builds a slot and validates it.
func NewTimeSlot(env Env, id, owner string, start, end uint32, r Recurrence, t SlotType) (*TimeSlot, error) {
	s := &TimeSlot{ID: id, Owner: owner, Recurrence: r.Clone(), SlotType: t}
	if err := s.SetTimes(start, end); err != nil {
		return nil, err
	}
	if err := s.Validate(env); err != nil {
		return nil, err
	}
	return s, nil
}

// SetTimes sets the minutes of the day and derives the duration.
func (s *TimeSlot) SetTimes(start, end uint32) error {
	if start >= MinutesPerDay || end >= MinutesPerDay || start == end {
		return &FieldError{
			Entity: EntityTimeSlot,
			Field:  "timing",
			Reason: ReasonInvalidTimeOfDay,
			Value:  FormatMinutes(start) + "-" + FormatMinutes(end),
		}
	}
	s.StartMinutes = start
	s.EndMinutes = end
	s.Duration = SlotDuration(start, end)
	return nil
}

// SlotDuration returns the length of [start, end) in minutes, wrapping past
// midnight when end < start.
func SlotDuration(start, end uint32) uint32 {
	if end >= start {
		return end - start
	}
	return MinutesPerDay - start + end
}

// Validate checks the slot type, recurrence and storage footprint.
func (s *TimeSlot) Validate(env Env) error {
	if !s.SlotType.Valid() {
		return fieldErr(EntityTimeSlot, "slot_type", ReasonUnknown, s.SlotType)
	}
	if err := s.Recurrence.validate(EntityTimeSlot); err != nil {
		return err
	}
	return env.CheckStorage(s)
}

// Wraps reports whether the slot crosses midnight.
func (s *TimeSlot) Wraps() bool {
	return s.StartMinutes >= s.EndMinutes
}

// OverlapsWith reports whether two slots of the same type share any minute.
// Slots of different types never overlap.
func (s *TimeSlot) OverlapsWith(o *TimeSlot) bool {
	if s.SlotType != o.SlotType {
		return false
	}
	switch {
	case !s.Wraps() && !o.Wraps():
		return s.StartMinutes < o.EndMinutes && s.EndMinutes > o.StartMinutes
	case s.Wraps() && !o.Wraps():
		return s.StartMinutes < o.EndMinutes || s.EndMinutes > o.StartMinutes
	case !s.Wraps() && o.Wraps():
		return o.StartMinutes < s.EndMinutes || o.EndMinutes > s.StartMinutes
	default:
		return true
	}
}

// IntersectsWindow is the coarse candidate filter used before the exact
// overlap test: a plain interval comparison against [start, end). A wrapping
// window or slot always passes so the exact test gets to decide.
func (s *TimeSlot) IntersectsWindow(start, end uint32) bool {
	if start >= end || s.Wraps() {
		return true
	}
	return s.StartMinutes < end && s.EndMinutes > start
}

// Clone returns a deep copy.
func (s *TimeSlot) Clone() *TimeSlot {
	c := *s
	c.Recurrence = s.Recurrence.Clone()
	return &c
}

func (s *TimeSlot) BaseStorage() uint64 { return TimeSlotBaseStorage }
func (s *TimeSlot) MaxStorage() uint64  { return TimeSlotMaxStorage }

func (s *TimeSlot) DynamicSize() uint64 {
	return uint64(len(s.ID)+len(s.Owner)) + s.Recurrence.size()
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(m uint32) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
