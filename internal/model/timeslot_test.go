package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(start, end uint32, typ SlotType) *TimeSlot {
	s := &TimeSlot{SlotType: typ, Recurrence: Daily()}
	if err := s.SetTimes(start, end); err != nil {
		panic(err)
	}
	return s
}

func TestSlotDuration(t *testing.T) {
	assert.Equal(t, uint32(60), SlotDuration(540, 600))
	assert.Equal(t, uint32(120), SlotDuration(1380, 60))
}

func TestNewTimeSlot_TimeOfDay(t *testing.T) {
	env := newEnv()
	for _, c := range [][2]uint32{{1440, 10}, {10, 1440}, {60, 60}} {
		_, err := NewTimeSlot(env, "s", "alice", c[0], c[1], Daily(), SlotBreak)
		requireReason(t, err, "timing", ReasonInvalidTimeOfDay)
	}

	s, err := NewTimeSlot(env, "s", "alice", 1380, 60, Daily(), SlotBreak)
	require.NoError(t, err)
	assert.Equal(t, uint32(120), s.Duration)
	assert.True(t, s.Wraps())
}

func TestNewTimeSlot_Recurrence(t *testing.T) {
	env := newEnv()
	_, err := NewTimeSlot(env, "s", "alice", 60, 120, Recurrence{Frequency: FrequencyCustom}, SlotBreak)
	requireReason(t, err, "recurrence", ReasonEmptyDays)

	_, err = NewTimeSlot(env, "s", "alice", 60, 120, EveryNDays(0), SlotBreak)
	requireReason(t, err, "recurrence", ReasonInvalidPattern)

	_, err = NewTimeSlot(env, "s", "alice", 60, 120, Daily(), "Lunch")
	requireReason(t, err, "slot_type", ReasonUnknown)
}

func TestOverlapsWith(t *testing.T) {
	tests := []struct {
		name string
		a, b *TimeSlot
		want bool
	}{
		{"disjoint", slot(540, 600, SlotBreak), slot(600, 660, SlotBreak), false},
		{"plain overlap", slot(540, 600, SlotBreak), slot(570, 660, SlotBreak), true},
		{"different types", slot(540, 600, SlotBreak), slot(540, 600, SlotWorkingHours), false},
		{"self wraps hits early", slot(1380, 60, SlotBreak), slot(30, 90, SlotBreak), true},
		{"self wraps hits late", slot(1380, 60, SlotBreak), slot(1400, 1430, SlotBreak), true},
		{"self wraps misses", slot(1380, 60, SlotBreak), slot(600, 660, SlotBreak), false},
		{"other wraps hits", slot(30, 90, SlotBreak), slot(1380, 60, SlotBreak), true},
		{"other wraps misses", slot(600, 660, SlotBreak), slot(1380, 60, SlotBreak), false},
		{"both wrap", slot(1300, 10, SlotBreak), slot(1430, 20, SlotBreak), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.OverlapsWith(tt.b))
			assert.Equal(t, tt.want, tt.b.OverlapsWith(tt.a), "symmetric")
		})
	}
}

func TestIntersectsWindow(t *testing.T) {
	s := slot(540, 600, SlotBreak)
	assert.True(t, s.IntersectsWindow(570, 700))
	assert.False(t, s.IntersectsWindow(600, 700))
	assert.True(t, s.IntersectsWindow(1380, 60), "wrapping window always passes")
	assert.True(t, slot(1380, 60, SlotBreak).IntersectsWindow(600, 700), "wrapping slot always passes")
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "09:05", FormatMinutes(545))
	assert.Equal(t, "23:59", FormatMinutes(1439))
}
