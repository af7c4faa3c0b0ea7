package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator mints entity ids. Implemented by UUIDv7IDs (production) and
// SequenceIDs (tests).
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDv7IDs generates time-sortable ids of the form "<prefix>-<uuidv7>".
//
// Thread-safety: UUIDv7IDs is stateless and safe for concurrent use.
type UUIDv7IDs struct{}

// NewID panics if UUID generation fails (should never happen in practice).
func (UUIDv7IDs) NewID(prefix string) string {
	return prefix + "-" + uuid.Must(uuid.NewV7()).String()
}

// SequenceIDs generates "<prefix>-1", "<prefix>-2", ... with an independent
// counter per prefix. Deterministic, for tests and scenario replays.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu   sync.Mutex
	next map[string]int
}

// NewSequenceIDs creates a generator with every counter at zero.
func NewSequenceIDs() *SequenceIDs {
	return &SequenceIDs{next: map[string]int{}}
}

// NewID returns the next id for prefix.
func (g *SequenceIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[prefix]++
	return fmt.Sprintf("%s-%d", prefix, g.next[prefix])
}
