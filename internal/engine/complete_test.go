package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/model"
)

func TestCompleteTask(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Ship release"))
	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))

	res, err := f.eng.CompleteTask(as(alice), id)
	require.NoError(t, err)
	assert.Equal(t, Completion{TaskID: id, Points: 4, Subtasks: []string{}}, res)

	task := f.task(t, id)
	assert.Equal(t, model.TaskCompleted, task.State)
	assert.Empty(t, task.TimeSlots)
	assert.Equal(t, uint32(4), f.balance(t, alice))

	history, err := f.eng.TaskCompletionHistory(as(alice), id)
	require.NoError(t, err)
	assert.Equal(t, []uint64{f.now()}, history)

	done, err := f.eng.CompletedTasks(as(bob), alice)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, id, done[0].ID)
}

func TestCompleteTask_FromCreatedIsStateError(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Not started"))

	_, err := f.eng.CompleteTask(as(alice), id)
	ee := requireKind(t, err, KindState)
	assert.Equal(t, string(model.TaskCreated), ee.CurrentState)
	assert.Equal(t, string(model.TaskCompleted), ee.Attempted)
	assert.Equal(t, uint32(0), f.balance(t, alice))
}

func TestCompleteTask_NotOwner(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Mine"))
	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))

	_, err := f.eng.CompleteTask(as(bob), id)
	requireKind(t, err, KindAccess)
	assert.Equal(t, model.TaskInProgress, f.task(t, id).State)
}

func TestCompleteTask_DailyHabit(t *testing.T) {
	f := newFixture(t)
	in := f.taskInput("Run")
	daily := model.Daily()
	in.Recurrence = &daily
	id := f.addTask(t, alice, in)
	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))

	res, err := f.eng.CompleteTask(as(alice), id)
	require.NoError(t, err)
	assert.Equal(t, "habit-1", res.HabitID)
	assert.Equal(t, uint32(1), res.Streak)
	assert.Equal(t, f.now()+day, res.NextDeadline)

	task := f.task(t, id)
	assert.Equal(t, model.TaskCreated, task.State)
	assert.Equal(t, f.now()+day, task.Deadline)
	assert.Empty(t, task.TimeSlots)
	assert.Equal(t, uint32(4), f.balance(t, alice))

	streak, err := f.eng.HabitStreak(as(alice), "habit-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), streak)

	_, err = f.eng.CompletedTasks(as(alice), alice)
	requireKind(t, err, KindNotFound)
}

func TestCompleteTask_StreakGrowsAndResets(t *testing.T) {
	f := newFixture(t)
	in := f.taskInput("Journal")
	daily := model.Daily()
	in.Recurrence = &daily
	id := f.addTask(t, alice, in)

	complete := func() Completion {
		t.Helper()
		require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))
		res, err := f.eng.CompleteTask(as(alice), id)
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, uint32(1), complete().Streak)
	f.clock.Advance(12 * time.Hour)
	assert.Equal(t, uint32(2), complete().Streak)

	// Three days later the deadline has passed: the task goes Overdue and
	// completing it breaks the streak.
	f.clock.Advance(3 * 24 * time.Hour)
	require.NoError(t, f.eng.MarkTaskOverdue(as(alice), id))
	res, err := f.eng.CompleteTask(as(alice), id)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), res.Streak)
	assert.Equal(t, f.now()+day, res.NextDeadline)

	history, err := f.eng.TaskCompletionHistory(as(alice), id)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, uint32(12), f.balance(t, alice))
}

func TestCompleteTask_CustomHabitNextDeadline(t *testing.T) {
	f := newFixture(t)
	// The fixture clock reads a Thursday; the next listed day is Monday.
	in := f.taskInput("Team sync")
	custom := model.MustCustom(model.Monday, model.Thursday)
	in.Recurrence = &custom
	id := f.addTask(t, alice, in)
	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))

	res, err := f.eng.CompleteTask(as(alice), id)
	require.NoError(t, err)
	assert.Equal(t, f.now()+4*day, res.NextDeadline)
}

func TestCompleteTask_WithSubtasks(t *testing.T) {
	f := newFixture(t)
	parent := f.addTask(t, alice, f.taskInput("Release"))
	in := f.taskInput("Changelog")
	in.ParentID = parent
	sub1 := f.addTask(t, alice, in)
	in.Title = "Tag"
	sub2 := f.addTask(t, alice, in)
	require.NoError(t, f.eng.StartTask(as(alice), parent, f.now()))

	res, err := f.eng.CompleteTask(as(alice), parent)
	require.NoError(t, err)
	assert.Equal(t, []string{sub1, sub2}, res.Subtasks)

	for _, id := range []string{parent, sub1, sub2} {
		assert.Equal(t, model.TaskCompleted, f.task(t, id).State, id)
	}
	assert.Equal(t, uint32(12), f.balance(t, alice))
}

func TestCompleteTask_MissingSubtask(t *testing.T) {
	f := newFixture(t)
	parent := f.addTask(t, alice, f.taskInput("Release"))
	in := f.taskInput("Changelog")
	in.ParentID = parent
	sub := f.addTask(t, alice, in)
	require.NoError(t, f.eng.StartTask(as(alice), parent, f.now()))
	_, err := f.store.Tasks().Delete(context.Background(), sub)
	require.NoError(t, err)

	_, err = f.eng.CompleteTask(as(alice), parent)
	ee := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Subtask", ee.Entity)
	assert.Equal(t, model.TaskInProgress, f.task(t, parent).State)
}

func TestCompleteTask_OverflowCommitsNothing(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		parent := f.addTask(t, alice, f.taskInput("Release"))
		in := f.taskInput("Changelog")
		in.ParentID = parent
		sub := f.addTask(t, alice, in)
		require.NoError(t, f.eng.StartTask(as(alice), parent, f.now()))

		// The subtask credit fits; the parent's does not.
		start := uint32(math.MaxUint32 - 5)
		f.setBalance(t, alice, start)

		_, err := f.eng.CompleteTask(as(alice), parent)
		ee := requireKind(t, err, KindOperation)
		assert.Equal(t, "Points addition would overflow", ee.Message)

		assert.Equal(t, start, f.balance(t, alice))
		assert.Equal(t, model.TaskInProgress, f.task(t, parent).State)
		assert.Equal(t, model.TaskCreated, f.task(t, sub).State)
		assert.NotEmpty(t, f.task(t, parent).TimeSlots)

		history, err := f.eng.TaskCompletionHistory(as(alice), parent)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}
