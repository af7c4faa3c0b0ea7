package engine

import (
	"context"

	"github.com/roach88/stride/internal/model"
)

// TaskInput describes a task to create.
type TaskInput struct {
	Title         string
	Description   string
	Priority      model.Priority
	Deadline      uint64
	EstimatedTime uint32
	TimeSlots     []model.TaskSlot
	// ParentID makes the new task a subtask of an existing task the caller
	// owns.
	ParentID string
	// Recurrence, when set, links a new Habit to the task.
	Recurrence *model.Recurrence
}

// TaskUpdate overwrites a task's editable fields. TimeSlots replaces the
// schedule only when non-nil.
type TaskUpdate struct {
	Title         string
	Description   string
	Priority      model.Priority
	Deadline      uint64
	EstimatedTime uint32
	TimeSlots     []model.TaskSlot
}

func taskOwner(t *model.Task) string { return t.Owner }

// AddTask creates a task owned by the caller and returns its id.
func (e *Engine) AddTask(ctx context.Context, in TaskInput) (string, error) {
	var id string
	err := e.mutate(ctx, "add_task", model.EntityTask, func(o *op) error {
		var parent *model.Task
		if in.ParentID != "" {
			p, ok, err := o.tx.Tasks().Get(ctx, in.ParentID)
			if err != nil {
				return err
			}
			if !ok {
				return notFound("Parent Task", in.ParentID)
			}
			if err := model.CheckOwner(p.Owner, o.caller); err != nil {
				return err
			}
			parent = p
		}

		taskID := e.ids.NewID("task")
		task, err := model.NewTask(o, taskID, o.caller, in.ParentID, model.TaskFields{
			Title:         in.Title,
			Description:   in.Description,
			Priority:      in.Priority,
			Deadline:      in.Deadline,
			EstimatedTime: in.EstimatedTime,
			TimeSlots:     in.TimeSlots,
		})
		if err != nil {
			return err
		}

		var habit *model.Habit
		if in.Recurrence != nil {
			habit, err = model.NewHabit(o, e.ids.NewID("habit"), taskID, o.caller, *in.Recurrence)
			if err != nil {
				return convert(model.EntityHabit, err)
			}
		}

		if parent != nil {
			if err := parent.AddSubtask(taskID, o.parentOf); err != nil {
				return err
			}
			if err := o.CheckStorage(parent); err != nil {
				return err
			}
		}

		if err := o.tx.Tasks().Put(ctx, task); err != nil {
			return err
		}
		if habit != nil {
			if err := o.tx.Habits().Put(ctx, habit); err != nil {
				return err
			}
		}
		if parent != nil {
			if err := o.tx.Tasks().Put(ctx, parent); err != nil {
				return err
			}
		}
		id = taskID
		return nil
	})
	if err != nil {
		return "", err
	}
	e.logger.Info("task added", "id", id, "parent", in.ParentID, "recurring", in.Recurrence != nil)
	return id, nil
}

// UpdateTask overwrites the task's editable fields, recomputes its reward
// points and validates it again.
func (e *Engine) UpdateTask(ctx context.Context, id string, u TaskUpdate) error {
	return e.mutate(ctx, "update_task", model.EntityTask, func(o *op) error {
		task, err := getOwned(o, o.tx.Tasks(), model.EntityTask, id, taskOwner)
		if err != nil {
			return err
		}
		if err := task.ValidateStateForAction(model.ActionUpdate); err != nil {
			return err
		}
		task.Apply(model.TaskFields{
			Title:         u.Title,
			Description:   u.Description,
			Priority:      u.Priority,
			Deadline:      u.Deadline,
			EstimatedTime: u.EstimatedTime,
			TimeSlots:     u.TimeSlots,
		})
		if err := task.Validate(o); err != nil {
			return err
		}
		return o.tx.Tasks().Put(ctx, task)
	})
}

// StartTask schedules the task at start for its estimated time and moves it
// from Created to InProgress.
func (e *Engine) StartTask(ctx context.Context, id string, start uint64) error {
	return e.mutate(ctx, "start_task", model.EntityTask, func(o *op) error {
		task, err := getOwned(o, o.tx.Tasks(), model.EntityTask, id, taskOwner)
		if err != nil {
			return err
		}
		task.Schedule(start)
		if err := task.Validate(o); err != nil {
			return err
		}
		if err := task.TransitionTo(model.TaskInProgress, o.now); err != nil {
			return err
		}
		return o.tx.Tasks().Put(ctx, task)
	})
}

// SplitTask replaces the task's schedule with contiguous slots between the
// given points. A Created task moves to InProgress.
func (e *Engine) SplitTask(ctx context.Context, id string, points []uint64) error {
	return e.mutate(ctx, "split_task", model.EntityTask, func(o *op) error {
		if len(points) < 2 {
			return validationError(model.EntityTask, "Need at least two split points to split a task")
		}
		task, err := getOwned(o, o.tx.Tasks(), model.EntityTask, id, taskOwner)
		if err != nil {
			return err
		}
		if err := task.Split(points); err != nil {
			return err
		}
		if err := task.Validate(o); err != nil {
			return err
		}
		if task.State == model.TaskCreated {
			if err := task.TransitionTo(model.TaskInProgress, o.now); err != nil {
				return err
			}
		}
		return o.tx.Tasks().Put(ctx, task)
	})
}

// MarkTaskOverdue moves a task past its deadline to Overdue and clears its
// schedule.
func (e *Engine) MarkTaskOverdue(ctx context.Context, id string) error {
	return e.mutate(ctx, "mark_task_overdue", model.EntityTask, func(o *op) error {
		task, err := getOwned(o, o.tx.Tasks(), model.EntityTask, id, taskOwner)
		if err != nil {
			return err
		}
		if o.now <= task.Deadline {
			return validationError(model.EntityTask, "Cannot mark as overdue before deadline")
		}
		if err := task.TransitionTo(model.TaskOverdue, o.now); err != nil {
			return err
		}
		task.ClearSlots()
		return o.tx.Tasks().Put(ctx, task)
	})
}

// DeleteTask removes the task and its direct subtasks. Subtasks go with
// their parent whoever owns them. The task is also unlinked from its own
// parent, if that still exists. Habits linked to deleted tasks are kept.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	var removed []string
	err := e.mutate(ctx, "delete_task", model.EntityTask, func(o *op) error {
		tasks := o.tx.Tasks()
		task, err := getOwned(o, tasks, model.EntityTask, id, taskOwner)
		if err != nil {
			return err
		}

		for _, sub := range task.SubtaskIDs {
			ok, err := tasks.Delete(ctx, sub)
			if err != nil {
				return err
			}
			if ok {
				removed = append(removed, sub)
			}
		}
		if _, err := tasks.Delete(ctx, id); err != nil {
			return err
		}
		removed = append(removed, id)

		if task.ParentID != "" {
			parent, ok, err := tasks.Get(ctx, task.ParentID)
			if err != nil {
				return err
			}
			if ok && parent.RemoveSubtask(id) {
				return tasks.Put(ctx, parent)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.Info("task deleted", "id", id, "removed", removed)
	return nil
}
