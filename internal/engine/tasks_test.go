package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stride/internal/model"
)

func TestAddTask(t *testing.T) {
	f := newFixture(t)

	id := f.addTask(t, alice, f.taskInput("  Write report  "))
	assert.Equal(t, "task-1", id)

	task := f.task(t, id)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, alice, task.Owner)
	assert.Equal(t, model.TaskCreated, task.State)
	assert.Equal(t, uint32(4), task.RewardPoints)
	assert.Empty(t, task.TimeSlots)
	assert.Empty(t, task.SubtaskIDs)
}

func TestAddTask_ValidationFailures(t *testing.T) {
	f := newFixture(t)
	now := f.now()

	tests := []struct {
		name   string
		mutate func(in *TaskInput)
		reason model.Reason
	}{
		{"empty title", func(in *TaskInput) { in.Title = "   " }, model.ReasonEmpty},
		{"control character", func(in *TaskInput) { in.Title = "bad\x07bell" }, model.ReasonInvalidCharacters},
		{"unknown priority", func(in *TaskInput) { in.Priority = "Urgent" }, model.ReasonUnknown},
		{"past deadline", func(in *TaskInput) { in.Deadline = now }, model.ReasonPastDeadline},
		{"too far ahead", func(in *TaskInput) { in.Deadline = now + model.MaxFutureTime + 1 }, model.ReasonTooFarInFuture},
		{"zero estimate", func(in *TaskInput) { in.EstimatedTime = 0 }, model.ReasonZero},
		{"day-long estimate", func(in *TaskInput) { in.EstimatedTime = 1440 }, model.ReasonTooLong},
		{"slot past deadline", func(in *TaskInput) {
			in.TimeSlots = []model.TaskSlot{{Start: now, End: in.Deadline + 1}}
		}, model.ReasonBeforeEndTime},
		{"overlapping slots", func(in *TaskInput) {
			in.TimeSlots = []model.TaskSlot{{Start: now, End: now + 60*minute}, {Start: now + 30*minute, End: now + 90*minute}}
		}, model.ReasonOverlappingSlots},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.taskInput("valid")
			tt.mutate(&in)
			_, err := f.eng.AddTask(as(alice), in)
			ee := requireKind(t, err, KindValidation)
			assert.Equal(t, model.EntityTask, ee.Entity)
			assert.Equal(t, string(tt.reason), ee.Detail)
		})
	}

	_, err := f.eng.TasksByOwner(as(alice), alice)
	requireKind(t, err, KindNotFound)
}

func TestAddTask_Recurring(t *testing.T) {
	f := newFixture(t)
	in := f.taskInput("Stretch")
	daily := model.Daily()
	in.Recurrence = &daily

	id := f.addTask(t, alice, in)

	habits, err := f.eng.HabitsByOwner(as(alice), alice)
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "habit-1", habits[0].ID)
	assert.Equal(t, id, habits[0].TaskID)
	assert.Equal(t, uint32(0), habits[0].Streak)
	assert.Equal(t, uint64(0), habits[0].LastCompleted)
}

func TestAddTask_InvalidRecurrenceWritesNothing(t *testing.T) {
	f := newFixture(t)
	in := f.taskInput("Gym")
	in.Recurrence = &model.Recurrence{Frequency: model.FrequencyCustom}

	_, err := f.eng.AddTask(as(alice), in)
	ee := requireKind(t, err, KindValidation)
	assert.Equal(t, model.EntityHabit, ee.Entity)
	assert.Equal(t, string(model.ReasonEmptyDays), ee.Detail)

	_, ok, err := f.store.Tasks().Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddTask_Subtask(t *testing.T) {
	f := newFixture(t)
	parent := f.addTask(t, alice, f.taskInput("Move house"))

	in := f.taskInput("Pack books")
	in.ParentID = parent
	child := f.addTask(t, alice, in)

	assert.Equal(t, []string{child}, f.task(t, parent).SubtaskIDs)
	assert.Equal(t, parent, f.task(t, child).ParentID)
}

func TestAddTask_ParentErrors(t *testing.T) {
	f := newFixture(t)
	parent := f.addTask(t, alice, f.taskInput("Alice's project"))

	in := f.taskInput("orphan")
	in.ParentID = "task-404"
	_, err := f.eng.AddTask(as(alice), in)
	ee := requireKind(t, err, KindNotFound)
	assert.Equal(t, "Parent Task", ee.Entity)
	assert.Equal(t, "task-404", ee.ID)

	in.ParentID = parent
	_, err = f.eng.AddTask(as(bob), in)
	requireKind(t, err, KindAccess)
	assert.Empty(t, f.task(t, parent).SubtaskIDs)
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Draft"))

	err := f.eng.UpdateTask(as(alice), id, TaskUpdate{
		Title:         "Final draft",
		Description:   "with references",
		Priority:      model.PriorityCritical,
		Deadline:      f.now() + 2*day,
		EstimatedTime: 90,
	})
	require.NoError(t, err)

	task := f.task(t, id)
	assert.Equal(t, "Final draft", task.Title)
	assert.Equal(t, "with references", task.Description)
	assert.Equal(t, uint32(12), task.RewardPoints)
	assert.Equal(t, f.now()+2*day, task.Deadline)
}

func TestUpdateTask_Rejections(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Draft"))
	valid := TaskUpdate{Title: "x", Priority: model.PriorityLow, Deadline: f.now() + day, EstimatedTime: 30}

	err := f.eng.UpdateTask(as(bob), id, valid)
	ee := requireKind(t, err, KindAccess)
	assert.Contains(t, ee.Message, "NotOwner")

	err = f.eng.UpdateTask(as(alice), "task-9", valid)
	requireKind(t, err, KindNotFound)

	bad := valid
	bad.Title = ""
	err = f.eng.UpdateTask(as(alice), id, bad)
	requireKind(t, err, KindValidation)
	assert.Equal(t, "Draft", f.task(t, id).Title)

	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))
	_, err = f.eng.CompleteTask(as(alice), id)
	require.NoError(t, err)

	err = f.eng.UpdateTask(as(alice), id, valid)
	ee = requireKind(t, err, KindState)
	assert.Equal(t, string(model.TaskCompleted), ee.CurrentState)
	assert.Equal(t, string(model.ActionUpdate), ee.Attempted)
}

func TestStartTask(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Focus block"))
	start := f.now() + 60*minute

	require.NoError(t, f.eng.StartTask(as(alice), id, start))

	task := f.task(t, id)
	assert.Equal(t, model.TaskInProgress, task.State)
	assert.Equal(t, []model.TaskSlot{{Start: start, End: start + 60*minute}}, task.TimeSlots)
}

func TestStartTask_OverlapRejected(t *testing.T) {
	f := newFixture(t)
	in := f.taskInput("Focus block")
	in.TimeSlots = []model.TaskSlot{{Start: f.now(), End: f.now() + 30*minute}}
	id := f.addTask(t, alice, in)

	err := f.eng.StartTask(as(alice), id, f.now()+10*minute)
	ee := requireKind(t, err, KindValidation)
	assert.Equal(t, string(model.ReasonOverlappingSlots), ee.Detail)

	task := f.task(t, id)
	assert.Equal(t, model.TaskCreated, task.State)
	assert.Len(t, task.TimeSlots, 1)
}

func TestStartTask_TwiceIsStateError(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Focus block"))
	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))

	err := f.eng.StartTask(as(alice), id, f.now()+2*60*minute)
	requireKind(t, err, KindState)
	assert.Len(t, f.task(t, id).TimeSlots, 1)
}

func TestSplitTask(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Long read"))

	require.NoError(t, f.eng.SplitTask(as(alice), id, []uint64{300, 100, 200}))

	task := f.task(t, id)
	assert.Equal(t, model.TaskInProgress, task.State)
	assert.Equal(t, []model.TaskSlot{{Start: 100, End: 200}, {Start: 200, End: 300}}, task.TimeSlots)

	// Already in progress: the schedule is replaced, the state kept.
	require.NoError(t, f.eng.SplitTask(as(alice), id, []uint64{500, 900}))
	task = f.task(t, id)
	assert.Equal(t, model.TaskInProgress, task.State)
	assert.Equal(t, []model.TaskSlot{{Start: 500, End: 900}}, task.TimeSlots)
}

func TestSplitTask_NeedsTwoPoints(t *testing.T) {
	f := newFixture(t)

	err := f.eng.SplitTask(as(alice), "task-1", []uint64{100})
	ee := requireKind(t, err, KindValidation)
	assert.Equal(t, "Need at least two split points to split a task", ee.Message)
}

func TestMarkTaskOverdue(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Taxes"))
	require.NoError(t, f.eng.StartTask(as(alice), id, f.now()))

	err := f.eng.MarkTaskOverdue(as(alice), id)
	ee := requireKind(t, err, KindValidation)
	assert.Equal(t, "Cannot mark as overdue before deadline", ee.Message)

	f.clock.Advance(25 * time.Hour)
	require.NoError(t, f.eng.MarkTaskOverdue(as(alice), id))

	task := f.task(t, id)
	assert.Equal(t, model.TaskOverdue, task.State)
	assert.Empty(t, task.TimeSlots)

	err = f.eng.MarkTaskOverdue(as(alice), id)
	requireKind(t, err, KindState)
}

func TestDeleteTask_CascadesOneLevel(t *testing.T) {
	f := newFixture(t)
	parent := f.addTask(t, alice, f.taskInput("Wedding"))
	in := f.taskInput("Venue")
	in.ParentID = parent
	sub1 := f.addTask(t, alice, in)
	in.Title = "Catering"
	sub2 := f.addTask(t, alice, in)
	in.Title = "Menu tasting"
	in.ParentID = sub2
	grandchild := f.addTask(t, alice, in)

	require.NoError(t, f.eng.DeleteTask(as(alice), parent))

	ctx := context.Background()
	for _, id := range []string{parent, sub1, sub2} {
		_, ok, err := f.store.Tasks().Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, "%s should be deleted", id)
	}
	_, ok, err := f.store.Tasks().Get(ctx, grandchild)
	require.NoError(t, err)
	assert.True(t, ok, "grandchildren are not deleted")

	owned, err := f.store.Tasks().OwnerIDs(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{grandchild}, owned)
}

func TestDeleteTask_UnlinksFromParent(t *testing.T) {
	f := newFixture(t)
	parent := f.addTask(t, alice, f.taskInput("Trip"))
	in := f.taskInput("Book flights")
	in.ParentID = parent
	sub := f.addTask(t, alice, in)

	require.NoError(t, f.eng.DeleteTask(as(alice), sub))
	assert.Empty(t, f.task(t, parent).SubtaskIDs)
}

func TestDeleteTask_KeepsHabit(t *testing.T) {
	f := newFixture(t)
	in := f.taskInput("Meditate")
	daily := model.Daily()
	in.Recurrence = &daily
	id := f.addTask(t, alice, in)

	require.NoError(t, f.eng.DeleteTask(as(alice), id))

	habits, err := f.eng.HabitsByOwner(as(alice), alice)
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, id, habits[0].TaskID)
}

func TestDeleteTask_NotOwner(t *testing.T) {
	f := newFixture(t)
	id := f.addTask(t, alice, f.taskInput("Private"))

	err := f.eng.DeleteTask(as(bob), id)
	requireKind(t, err, KindAccess)
	f.task(t, id)
}
