package engine

import "time"

// Clock supplies the wall-clock time of an operation. Each operation reads
// it once, so every check within one call sees the same instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// nanos converts t to nanoseconds since the epoch. Times before the epoch
// clamp to zero.
func nanos(t time.Time) uint64 {
	n := t.UnixNano()
	if n < 0 {
		return 0
	}
	return uint64(n)
}
