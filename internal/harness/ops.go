package harness

import (
	"context"

	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/model"
)

// opFunc performs one operation. A returned error that is not an
// *engine.Error means the step's arguments were malformed.
type opFunc func(ctx context.Context, r *runner, as string, a args) (any, error)

var operations = map[string]opFunc{
	"grant_points": opGrantPoints,

	"add_task":          opAddTask,
	"update_task":       opUpdateTask,
	"start_task":        opStartTask,
	"split_task":        opSplitTask,
	"complete_task":     opCompleteTask,
	"mark_task_overdue": withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return nil, e.MarkTaskOverdue(ctx, id) }),
	"delete_task":       withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return nil, e.DeleteTask(ctx, id) }),

	"add_reward":    opAddReward,
	"update_reward": opUpdateReward,
	"redeem_reward": withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return e.RedeemReward(ctx, id) }),
	"delete_reward": withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return nil, e.DeleteReward(ctx, id) }),

	"add_time_slot":    opAddTimeSlot,
	"update_time_slot": opUpdateTimeSlot,
	"delete_time_slot": withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return nil, e.DeleteTimeSlot(ctx, id) }),

	"tasks_by_owner":          listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.Task, error) { return e.TasksByOwner }, taskID),
	"incomplete_tasks":        listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.Task, error) { return e.IncompleteTasks }, taskID),
	"completed_tasks":         listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.Task, error) { return e.CompletedTasks }, taskID),
	"habits_by_owner":         listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.Habit, error) { return e.HabitsByOwner }, habitID),
	"rewards_by_owner":        listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.Reward, error) { return e.RewardsByOwner }, rewardID),
	"redeemed_rewards":        listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.Reward, error) { return e.RedeemedRewards }, rewardID),
	"time_slots_by_owner":     listOp(func(e *engine.Engine) func(context.Context, string) ([]*model.TimeSlot, error) { return e.TimeSlotsByOwner }, slotID),
	"time_slots_by_timeframe": opTimeSlotsByTimeframe,
	"habit_streak":            withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return e.HabitStreak(ctx, id) }),
	"task_completion_history": withID(func(ctx context.Context, e *engine.Engine, id string) (any, error) { return e.TaskCompletionHistory(ctx, id) }),
	"reward_points":           opRewardPoints,
	"storage_metrics":         opStorageMetrics,
}

func taskID(t *model.Task) string     { return t.ID }
func habitID(h *model.Habit) string   { return h.ID }
func rewardID(r *model.Reward) string { return r.ID }
func slotID(s *model.TimeSlot) string { return s.ID }

func withID(fn func(ctx context.Context, e *engine.Engine, id string) (any, error)) opFunc {
	return func(ctx context.Context, r *runner, _ string, a args) (any, error) {
		id, err := a.str("id")
		if err != nil {
			return nil, err
		}
		return fn(ctx, r.eng, id)
	}
}

// listOp runs an owner query and reports the ids it returned. The owner
// defaults to the caller.
func listOp[T any](query func(*engine.Engine) func(context.Context, string) ([]*T, error), id func(*T) string) opFunc {
	return func(ctx context.Context, r *runner, as string, a args) (any, error) {
		owner, err := a.optStr("owner", as)
		if err != nil {
			return nil, err
		}
		items, err := query(r.eng)(ctx, owner)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = id(it)
		}
		return ids, nil
	}
}

func opGrantPoints(ctx context.Context, r *runner, as string, a args) (any, error) {
	owner, err := a.optStr("owner", as)
	if err != nil {
		return nil, err
	}
	pts, err := a.uint32("points")
	if err != nil {
		return nil, err
	}
	return engine.NewLedger(r.store.Balances()).Add(ctx, owner, engine.Credit(pts))
}

func readTaskFields(a args) (engine.TaskUpdate, error) {
	var u engine.TaskUpdate
	var err error
	if u.Title, err = a.str("title"); err != nil {
		return u, err
	}
	if u.Description, err = a.optStr("description", ""); err != nil {
		return u, err
	}
	if u.Priority, err = a.priority("priority"); err != nil {
		return u, err
	}
	if u.Deadline, err = a.time("deadline"); err != nil {
		return u, err
	}
	if u.EstimatedTime, err = a.uint32("estimated_time"); err != nil {
		return u, err
	}
	u.TimeSlots, err = a.slots("time_slots")
	return u, err
}

func opAddTask(ctx context.Context, r *runner, _ string, a args) (any, error) {
	f, err := readTaskFields(a)
	if err != nil {
		return nil, err
	}
	parent, err := a.optStr("parent", "")
	if err != nil {
		return nil, err
	}
	rec, err := a.recurrence("recurrence")
	if err != nil {
		return nil, err
	}
	return r.eng.AddTask(ctx, engine.TaskInput{
		Title:         f.Title,
		Description:   f.Description,
		Priority:      f.Priority,
		Deadline:      f.Deadline,
		EstimatedTime: f.EstimatedTime,
		TimeSlots:     f.TimeSlots,
		ParentID:      parent,
		Recurrence:    rec,
	})
}

func opUpdateTask(ctx context.Context, r *runner, _ string, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	f, err := readTaskFields(a)
	if err != nil {
		return nil, err
	}
	return nil, r.eng.UpdateTask(ctx, id, f)
}

func opStartTask(ctx context.Context, r *runner, _ string, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	start, err := a.time("start")
	if err != nil {
		return nil, err
	}
	return nil, r.eng.StartTask(ctx, id, start)
}

func opSplitTask(ctx context.Context, r *runner, _ string, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	points, err := a.times("points")
	if err != nil {
		return nil, err
	}
	return nil, r.eng.SplitTask(ctx, id, points)
}

func opCompleteTask(ctx context.Context, r *runner, _ string, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	return r.eng.CompleteTask(ctx, id)
}

func opAddReward(ctx context.Context, r *runner, _ string, a args) (any, error) {
	title, err := a.str("title")
	if err != nil {
		return nil, err
	}
	desc, err := a.optStr("description", "")
	if err != nil {
		return nil, err
	}
	cost, err := a.uint32("cost")
	if err != nil {
		return nil, err
	}
	return r.eng.AddReward(ctx, title, desc, cost)
}

func opUpdateReward(ctx context.Context, r *runner, _ string, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	title, err := a.str("title")
	if err != nil {
		return nil, err
	}
	desc, err := a.optStr("description", "")
	if err != nil {
		return nil, err
	}
	cost, err := a.uint32("cost")
	if err != nil {
		return nil, err
	}
	return nil, r.eng.UpdateReward(ctx, id, title, desc, cost)
}

func readSlotTimes(a args) (start, end uint32, rec model.Recurrence, err error) {
	if start, err = a.minutes("start"); err != nil {
		return
	}
	if end, err = a.minutes("end"); err != nil {
		return
	}
	rec = model.Daily()
	if r, rerr := a.recurrence("recurrence"); rerr != nil {
		err = rerr
	} else if r != nil {
		rec = *r
	}
	return
}

func opAddTimeSlot(ctx context.Context, r *runner, _ string, a args) (any, error) {
	start, end, rec, err := readSlotTimes(a)
	if err != nil {
		return nil, err
	}
	typ, err := a.slotType("slot_type")
	if err != nil {
		return nil, err
	}
	return r.eng.AddTimeSlot(ctx, engine.TimeSlotInput{
		StartMinutes: start,
		EndMinutes:   end,
		SlotType:     typ,
		Recurrence:   rec,
	})
}

func opUpdateTimeSlot(ctx context.Context, r *runner, _ string, a args) (any, error) {
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	start, end, rec, err := readSlotTimes(a)
	if err != nil {
		return nil, err
	}
	return nil, r.eng.UpdateTimeSlot(ctx, id, start, end, rec)
}

func opTimeSlotsByTimeframe(ctx context.Context, r *runner, as string, a args) (any, error) {
	owner, err := a.optStr("owner", as)
	if err != nil {
		return nil, err
	}
	start, err := a.minutes("start")
	if err != nil {
		return nil, err
	}
	end, err := a.minutes("end")
	if err != nil {
		return nil, err
	}
	var typ *model.SlotType
	if a.has("slot_type") {
		t, err := a.slotType("slot_type")
		if err != nil {
			return nil, err
		}
		typ = &t
	}
	slots, err := r.eng.TimeSlotsByTimeframe(ctx, owner, start, end, typ)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
	}
	return ids, nil
}

func opRewardPoints(ctx context.Context, r *runner, as string, a args) (any, error) {
	owner, err := a.optStr("owner", as)
	if err != nil {
		return nil, err
	}
	return r.eng.RewardPoints(ctx, owner)
}

func opStorageMetrics(ctx context.Context, r *runner, _ string, a args) (any, error) {
	entity, err := a.str("entity")
	if err != nil {
		return nil, err
	}
	id, err := a.str("id")
	if err != nil {
		return nil, err
	}
	return r.eng.StorageMetrics(ctx, entity, id)
}
