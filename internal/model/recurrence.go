package model

import (
	"slices"
)

// Recurrence describes when a habit or time slot repeats.
//
// Daily patterns repeat every Interval days and carry no days. Custom patterns
// repeat on a non-empty, sorted, duplicate-free set of weekdays and carry no
// interval. An Interval of zero means unset.
type Recurrence struct {
	Frequency    Frequency `json:"frequency"`
	Interval     uint32    `json:"interval,omitempty"`
	SpecificDays []Weekday `json:"specific_days,omitempty"`
}

// Daily returns a pattern that repeats every day.
func Daily() Recurrence {
	return Recurrence{Frequency: FrequencyDaily, Interval: 1}
}

// EveryNDays returns a daily pattern with the given interval. The result is
// invalid when n is zero.
func EveryNDays(n uint32) Recurrence {
	return Recurrence{Frequency: FrequencyDaily, Interval: n}
}

// Custom returns a pattern repeating on the given weekdays, deduplicated and
// sorted Monday first.
func Custom(days ...Weekday) (Recurrence, error) {
	if len(days) == 0 {
		return Recurrence{}, fieldErr("Recurrence", "specific_days", ReasonEmptyDays, nil)
	}
	return Recurrence{Frequency: FrequencyCustom, SpecificDays: normalizeDays(days)}, nil
}

// MustCustom is like Custom but panics when no days are given.
func MustCustom(days ...Weekday) Recurrence {
	r, err := Custom(days...)
	if err != nil {
		panic("model: custom recurrence needs at least one day")
	}
	return r
}

func normalizeDays(days []Weekday) []Weekday {
	out := make([]Weekday, 0, len(days))
	for _, d := range days {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b Weekday) int { return a.Index() - b.Index() })
	return out
}

// IsValid reports whether the pattern is well formed for its frequency.
func (r Recurrence) IsValid() bool {
	switch r.Frequency {
	case FrequencyDaily:
		return r.Interval > 0 && len(r.SpecificDays) == 0
	case FrequencyCustom:
		if r.Interval != 0 || len(r.SpecificDays) == 0 {
			return false
		}
		prev := -1
		for _, d := range r.SpecificDays {
			i := d.Index()
			if i <= prev {
				return false
			}
			prev = i
		}
		return true
	default:
		return false
	}
}

// Clone returns a copy that shares no memory with r.
func (r Recurrence) Clone() Recurrence {
	r.SpecificDays = slices.Clone(r.SpecificDays)
	return r
}

func (r Recurrence) validate(entity string) error {
	if r.Frequency == FrequencyCustom && len(r.SpecificDays) == 0 {
		return fieldErr(entity, "recurrence", ReasonEmptyDays, nil)
	}
	if !r.IsValid() {
		return fieldErr(entity, "recurrence", ReasonInvalidPattern, r.Frequency)
	}
	return nil
}

func (r Recurrence) size() uint64 {
	return uint64(len(r.SpecificDays))
}

func (r Recurrence) intervalDays() uint64 {
	if r.Interval == 0 {
		return 1
	}
	return uint64(r.Interval)
}

// dayNumber counts whole days since the epoch.
func dayNumber(ts uint64) uint64 {
	return ts / NanosPerDay
}

// WeekdayAt returns the weekday of a timestamp. The epoch was a Thursday.
func WeekdayAt(ts uint64) Weekday {
	return weekOrder[(dayNumber(ts)+3)%7]
}

// Continuous reports whether completing at now keeps a streak alive given
// the previous completion. A habit never completed is always continuous, and
// so is one whose last completion lies in the future of a rewound clock.
func (r Recurrence) Continuous(now, last uint64) bool {
	if last == 0 || now < last {
		return true
	}
	switch r.Frequency {
	case FrequencyDaily:
		return now-last <= r.intervalDays()*NanosPerDay
	case FrequencyCustom:
		if len(r.SpecificDays) == 0 {
			return false
		}
		elapsed := dayNumber(now) - dayNumber(last)
		return slices.Contains(r.SpecificDays, WeekdayAt(now)) && elapsed <= 7
	default:
		return false
	}
}

// NextDeadline returns when the next occurrence is due after completing at
// now. Custom patterns pick the nearest listed weekday from tomorrow on and
// fall back to a week ahead.
func (r Recurrence) NextDeadline(now uint64) uint64 {
	if r.Frequency == FrequencyDaily {
		return now + r.intervalDays()*NanosPerDay
	}
	offset := uint64(7)
	if len(r.SpecificDays) > 0 {
		today := WeekdayAt(now).Index()
		for i := 1; i <= 7; i++ {
			if slices.Contains(r.SpecificDays, WeekdayOf(today+i)) {
				offset = uint64(i)
				break
			}
		}
	}
	return now + offset*NanosPerDay
}
