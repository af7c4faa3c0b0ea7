package model

// Storage budgets in bytes, per entity type.
const (
	TaskBaseStorage     uint64 = 256
	TaskMaxStorage      uint64 = 4096
	RewardBaseStorage   uint64 = 128
	RewardMaxStorage    uint64 = 2048
	TimeSlotBaseStorage uint64 = 128
	TimeSlotMaxStorage  uint64 = 2048
	HabitBaseStorage    uint64 = 128
	HabitMaxStorage     uint64 = 2048
)

// Time constants in nanoseconds unless noted.
const (
	NanosPerMinute uint64 = 60 * 1_000_000_000
	NanosPerDay    uint64 = 24 * 60 * NanosPerMinute
	MaxFutureTime  uint64 = 365 * NanosPerDay

	// MinutesPerDay bounds estimated times and slot minutes.
	MinutesPerDay uint32 = 1440
)

// Sized is implemented by every stored entity. Its footprint is the base
// budget plus the byte length of its variable fields.
type Sized interface {
	BaseStorage() uint64
	MaxStorage() uint64
	DynamicSize() uint64
}

// Env supplies what validation needs from outside the entity.
type Env interface {
	// Now is the current time in nanoseconds.
	Now() uint64
	// CheckStorage admits or rejects an entity's storage footprint.
	CheckStorage(s Sized) error
}

func idsSize(ids []string) uint64 {
	var n uint64
	for _, id := range ids {
		n += uint64(len(id))
	}
	return n
}
