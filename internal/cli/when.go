package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/stride/internal/model"
)

// parseWhen reads a point in time as a duration from now ("24h", "-30m"),
// an RFC 3339 timestamp, or nanoseconds since the Unix epoch.
func parseWhen(s string, now time.Time) (uint64, error) {
	if d, err := time.ParseDuration(s); err == nil {
		t := now.Add(d)
		if t.Before(time.Unix(0, 0)) {
			return 0, fmt.Errorf("time %q is before the epoch", s)
		}
		return uint64(t.UnixNano()), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if t.Before(time.Unix(0, 0)) {
			return 0, fmt.Errorf("time %q is before the epoch", s)
		}
		return uint64(t.UnixNano()), nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("invalid time %q: want a duration, an RFC 3339 timestamp or nanoseconds", s)
}

// parseSlots reads task slots given as "start/end" pairs.
func parseSlots(specs []string, now time.Time) ([]model.TaskSlot, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	slots := make([]model.TaskSlot, 0, len(specs))
	for _, spec := range specs {
		startStr, endStr, ok := strings.Cut(spec, "/")
		if !ok || startStr == "" || endStr == "" {
			return nil, fmt.Errorf("invalid slot %q: want start/end", spec)
		}
		start, err := parseWhen(startStr, now)
		if err != nil {
			return nil, err
		}
		end, err := parseWhen(endStr, now)
		if err != nil {
			return nil, err
		}
		slots = append(slots, model.TaskSlot{Start: start, End: end})
	}
	return slots, nil
}
