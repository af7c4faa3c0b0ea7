package engine

import (
	"context"

	"github.com/roach88/stride/internal/model"
)

// Completion summarizes what CompleteTask did.
type Completion struct {
	TaskID string `json:"task_id"`
	// Points credited to the task owner for the task itself.
	Points uint32 `json:"points"`
	// Subtasks force-completed along with the task, in link order.
	Subtasks []string `json:"subtasks"`
	// HabitID is set when the task recurs; the task is then back in Created
	// with NextDeadline.
	HabitID      string `json:"habit_id,omitempty"`
	Streak       uint32 `json:"streak,omitempty"`
	NextDeadline uint64 `json:"next_deadline,omitempty"`
}

// CompleteTask completes a task and its direct subtasks and pays out their
// reward points.
//
// Subtasks are completed and credited to their owners first, whatever state
// they are in. The task then moves to Completed, its schedule is cleared and
// the completion time is logged. If a habit recurs the task, the habit's
// streak is updated and the task is reset to Created with the next deadline.
// Finally the task owner is credited.
//
// Every step is checked before anything is written, including the ledger
// arithmetic, so a failure leaves the store unchanged.
func (e *Engine) CompleteTask(ctx context.Context, id string) (Completion, error) {
	var res Completion
	err := e.mutate(ctx, "complete_task", model.EntityTask, func(o *op) error {
		tasks := o.tx.Tasks()
		task, err := getOwned(o, tasks, model.EntityTask, id, taskOwner)
		if err != nil {
			return err
		}

		subs := make([]*model.Task, 0, len(task.SubtaskIDs))
		for _, sid := range task.SubtaskIDs {
			sub, ok, err := tasks.Get(ctx, sid)
			if err != nil {
				return err
			}
			if !ok {
				return notFound("Subtask", sid)
			}
			if err := sub.TransitionTo(model.TaskCompleted, o.now); err != nil {
				return err
			}
			subs = append(subs, sub)
		}

		// Dry-run the credits so an overflow is caught before any write.
		ledger := o.ledger()
		projected := map[string]uint32{}
		credit := func(owner string, pts uint32) error {
			cur, seen := projected[owner]
			if !seen {
				b, err := ledger.Balance(ctx, owner)
				if err != nil {
					return err
				}
				cur = b
			}
			next, err := Credit(pts).apply(cur)
			if err != nil {
				return err
			}
			projected[owner] = next
			return nil
		}
		for _, sub := range subs {
			if err := credit(sub.Owner, sub.RewardPoints); err != nil {
				return err
			}
		}

		if err := task.TransitionTo(model.TaskCompleted, o.now); err != nil {
			return err
		}
		task.ClearSlots()

		habit, err := habitForTask(o, id)
		if err != nil {
			return err
		}
		if habit != nil {
			next := habit.Record(o.now)
			task.Recur(next)
			habit.TaskID = task.ID
			res.HabitID, res.Streak, res.NextDeadline = habit.ID, habit.Streak, next
		}
		if err := credit(task.Owner, task.RewardPoints); err != nil {
			return err
		}

		res.TaskID, res.Points, res.Subtasks = id, task.RewardPoints, make([]string, 0, len(subs))
		for _, sub := range subs {
			if _, err := ledger.Add(ctx, sub.Owner, Credit(sub.RewardPoints)); err != nil {
				return err
			}
			if err := tasks.Put(ctx, sub); err != nil {
				return err
			}
			res.Subtasks = append(res.Subtasks, sub.ID)
		}
		if err := o.tx.Completions().Append(ctx, id, o.now); err != nil {
			return err
		}
		if habit != nil {
			if err := o.tx.Habits().Put(ctx, habit); err != nil {
				return err
			}
		}
		if _, err := ledger.Add(ctx, task.Owner, Credit(task.RewardPoints)); err != nil {
			return err
		}
		return tasks.Put(ctx, task)
	})
	if err != nil {
		return Completion{}, err
	}
	e.logger.Info("task completed",
		"id", id, "points", res.Points, "subtasks", len(res.Subtasks), "habit", res.HabitID, "streak", res.Streak)
	return res, nil
}

// habitForTask finds the habit linked to taskID, if any. When several link
// the same task the one with the smallest id wins.
func habitForTask(o *op, taskID string) (*model.Habit, error) {
	habits, err := o.tx.Habits().List(o.ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if h.TaskID == taskID {
			return h, nil
		}
	}
	return nil, nil
}
