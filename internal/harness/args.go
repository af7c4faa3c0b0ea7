package harness

import (
	"fmt"
	"math"
	"time"

	"github.com/roach88/stride/internal/model"
)

// args reads typed step arguments. Times resolve against now.
type args struct {
	m   map[string]any
	now uint64
}

func (a args) has(key string) bool {
	_, ok := a.m[key]
	return ok
}

func (a args) str(key string) (string, error) {
	v, ok := a.m[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: want string, got %T", key, v)
	}
	return s, nil
}

// optStr returns def when key is absent.
func (a args) optStr(key, def string) (string, error) {
	if !a.has(key) {
		return def, nil
	}
	return a.str(key)
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	}
	return 0, false
}

func (a args) uint64(key string) (uint64, error) {
	v, ok := a.m[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	n, ok := toUint64(v)
	if !ok {
		return 0, fmt.Errorf("arg %q: want non-negative integer, got %v", key, v)
	}
	return n, nil
}

func (a args) uint32(key string) (uint32, error) {
	n, err := a.uint64(key)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("arg %q: %d out of range", key, n)
	}
	return uint32(n), nil
}

// optUint32 returns def when key is absent.
func (a args) optUint32(key string, def uint32) (uint32, error) {
	if !a.has(key) {
		return def, nil
	}
	return a.uint32(key)
}

// timeValue reads an absolute timestamp in nanoseconds or a duration
// relative to now.
func (a args) timeValue(key string, v any) (uint64, error) {
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("arg %q: %w", key, err)
		}
		if d < 0 && uint64(-d) > a.now {
			return 0, fmt.Errorf("arg %q: %s is before the epoch", key, s)
		}
		return uint64(int64(a.now) + int64(d)), nil
	}
	n, ok := toUint64(v)
	if !ok {
		return 0, fmt.Errorf("arg %q: want timestamp or duration, got %v", key, v)
	}
	return n, nil
}

func (a args) time(key string) (uint64, error) {
	v, ok := a.m[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	return a.timeValue(key, v)
}

func (a args) times(key string) ([]uint64, error) {
	raw, ok := a.m[key].([]any)
	if !ok {
		return nil, fmt.Errorf("arg %q: want list", key)
	}
	out := make([]uint64, len(raw))
	for i, v := range raw {
		t, err := a.timeValue(fmt.Sprintf("%s[%d]", key, i), v)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// slots reads a list of {start, end} maps. Absent means nil.
func (a args) slots(key string) ([]model.TaskSlot, error) {
	if !a.has(key) {
		return nil, nil
	}
	raw, ok := a.m[key].([]any)
	if !ok {
		return nil, fmt.Errorf("arg %q: want list", key)
	}
	out := make([]model.TaskSlot, 0, len(raw))
	for i, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("arg %s[%d]: want map with start and end", key, i)
		}
		sub := args{m: m, now: a.now}
		start, err := sub.time("start")
		if err != nil {
			return nil, err
		}
		end, err := sub.time("end")
		if err != nil {
			return nil, err
		}
		out = append(out, model.TaskSlot{Start: start, End: end})
	}
	return out, nil
}

// minutes reads a time of day as "HH:MM" or minutes since midnight. Integers
// out of range are passed through for the engine to reject.
func (a args) minutes(key string) (uint32, error) {
	v, ok := a.m[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	if s, ok := v.(string); ok {
		return model.ParseMinutes(s)
	}
	return a.uint32(key)
}

// recurrence reads an optional pattern in model.ParseRecurrence form.
func (a args) recurrence(key string) (*model.Recurrence, error) {
	if !a.has(key) {
		return nil, nil
	}
	s, err := a.str(key)
	if err != nil {
		return nil, err
	}
	r, err := model.ParseRecurrence(s)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// priority reads a priority. Unknown names are passed through so the
// engine reports them as validation errors.
func (a args) priority(key string) (model.Priority, error) {
	s, err := a.str(key)
	if err != nil {
		return "", err
	}
	if p, err := model.ParsePriority(s); err == nil {
		return p, nil
	}
	return model.Priority(s), nil
}

func (a args) slotType(key string) (model.SlotType, error) {
	s, err := a.str(key)
	if err != nil {
		return "", err
	}
	if t, err := model.ParseSlotType(s); err == nil {
		return t, nil
	}
	return model.SlotType(s), nil
}
