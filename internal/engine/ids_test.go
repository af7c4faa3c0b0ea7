package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIDs(t *testing.T) {
	g := NewSequenceIDs()
	assert.Equal(t, "task-1", g.NewID("task"))
	assert.Equal(t, "task-2", g.NewID("task"))
	assert.Equal(t, "habit-1", g.NewID("habit"))
}

func TestUUIDv7IDs(t *testing.T) {
	var g UUIDv7IDs
	id := g.NewID("reward")
	require.True(t, strings.HasPrefix(id, "reward-"))

	u, err := uuid.Parse(strings.TrimPrefix(id, "reward-"))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
	assert.NotEqual(t, id, g.NewID("reward"))
}

func TestContextIdentity(t *testing.T) {
	id, err := ContextIdentity{}.CallerID(WithCaller(context.Background(), bob))
	require.NoError(t, err)
	assert.Equal(t, bob, id)

	_, err = ContextIdentity{}.CallerID(context.Background())
	assert.ErrorIs(t, err, ErrNoCaller)

	_, err = ContextIdentity{}.CallerID(WithCaller(context.Background(), ""))
	assert.ErrorIs(t, err, ErrNoCaller)

	id, err = ContextIdentity{Fallback: "cli"}.CallerID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cli", id)
}
