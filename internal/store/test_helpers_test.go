package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/stride/internal/model"
)

// createTestStore creates a new SQLite store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// eachBackend runs fn against a fresh memory store and a fresh SQLite store.
func eachBackend(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestStore(t)) })
}

func testTask(id, owner string) *model.Task {
	return &model.Task{
		ID:            id,
		Title:         "task " + id,
		Priority:      model.PriorityLow,
		Deadline:      1_000_000,
		EstimatedTime: 30,
		RewardPoints:  1,
		TimeSlots:     []model.TaskSlot{},
		State:         model.TaskCreated,
		Owner:         owner,
		SubtaskIDs:    []string{},
	}
}
