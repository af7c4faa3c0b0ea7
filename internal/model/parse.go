package model

import (
	"strconv"
	"strings"
)

// ParseRecurrence reads the short text form of a pattern: "daily",
// "daily/N" for every N days, or a comma-separated weekday list such as
// "mon,thu".
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.TrimSpace(s)
	bad := fieldErr("Recurrence", "pattern", ReasonInvalidPattern, s)

	lower := strings.ToLower(s)
	if lower == "daily" {
		return Daily(), nil
	}
	if n, ok := strings.CutPrefix(lower, "daily/"); ok {
		interval, err := strconv.ParseUint(n, 10, 32)
		if err != nil || interval == 0 {
			return Recurrence{}, bad
		}
		return EveryNDays(uint32(interval)), nil
	}

	var days []Weekday
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := ParseWeekday(part)
		if err != nil {
			return Recurrence{}, bad
		}
		days = append(days, d)
	}
	return Custom(days...)
}

// String renders r in the form ParseRecurrence reads.
func (r Recurrence) String() string {
	if r.Frequency == FrequencyDaily {
		if r.intervalDays() == 1 {
			return "daily"
		}
		return "daily/" + strconv.FormatUint(r.intervalDays(), 10)
	}
	names := make([]string, len(r.SpecificDays))
	for i, d := range r.SpecificDays {
		names[i] = strings.ToLower(string(d)[:3])
	}
	return strings.Join(names, ",")
}

// ParseMinutes reads a time of day as "HH:MM" and returns minutes since
// midnight.
func ParseMinutes(s string) (uint32, error) {
	bad := fieldErr(EntityTimeSlot, "timing", ReasonInvalidTimeOfDay, s)
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 {
		return 0, bad
	}
	h, err := strconv.ParseUint(hh, 10, 32)
	if err != nil || h > 23 {
		return 0, bad
	}
	m, err := strconv.ParseUint(mm, 10, 32)
	if err != nil || m > 59 {
		return 0, bad
	}
	return uint32(h*60 + m), nil
}
