package engine

import (
	"context"
	"fmt"

	"github.com/roach88/stride/internal/model"
	"github.com/roach88/stride/internal/quota"
)

// Listing queries are open to any caller and report an empty result as
// NOT_FOUND. Single-entity queries are owner-only.

// TasksByOwner returns every task owned by owner.
func (e *Engine) TasksByOwner(ctx context.Context, owner string) ([]*model.Task, error) {
	return e.tasksWhere(ctx, "tasks_by_owner", owner, "tasks", func(*model.Task) bool { return true })
}

// IncompleteTasks returns owner's tasks that are not Completed.
func (e *Engine) IncompleteTasks(ctx context.Context, owner string) ([]*model.Task, error) {
	return e.tasksWhere(ctx, "incomplete_tasks", owner, "incomplete tasks", func(t *model.Task) bool {
		return t.State != model.TaskCompleted
	})
}

// CompletedTasks returns owner's Completed tasks. Recurring tasks are never
// among them.
func (e *Engine) CompletedTasks(ctx context.Context, owner string) ([]*model.Task, error) {
	return e.tasksWhere(ctx, "completed_tasks", owner, "completed tasks", func(t *model.Task) bool {
		return t.State == model.TaskCompleted
	})
}

func (e *Engine) tasksWhere(ctx context.Context, name, owner, what string, keep func(*model.Task) bool) ([]*model.Task, error) {
	var out []*model.Task
	err := e.read(ctx, name, model.EntityTask, func(o *op) error {
		all, err := o.tx.Tasks().ByOwner(ctx, owner)
		if err != nil {
			return err
		}
		for _, t := range all {
			if keep(t) {
				out = append(out, t)
			}
		}
		if len(out) == 0 {
			return noneFound(model.EntityTask, fmt.Sprintf("No %s found for %s", what, owner))
		}
		return nil
	})
	return out, err
}

// HabitsByOwner returns every habit owned by owner.
func (e *Engine) HabitsByOwner(ctx context.Context, owner string) ([]*model.Habit, error) {
	var out []*model.Habit
	err := e.read(ctx, "habits_by_owner", model.EntityHabit, func(o *op) error {
		var err error
		if out, err = o.tx.Habits().ByOwner(ctx, owner); err != nil {
			return err
		}
		if len(out) == 0 {
			return noneFound(model.EntityHabit, "No habits found for "+owner)
		}
		return nil
	})
	return out, err
}

// HabitStreak returns the streak of one of the caller's habits.
func (e *Engine) HabitStreak(ctx context.Context, id string) (uint32, error) {
	var streak uint32
	err := e.read(ctx, "habit_streak", model.EntityHabit, func(o *op) error {
		h, err := getOwned(o, o.tx.Habits(), model.EntityHabit, id, func(h *model.Habit) string { return h.Owner })
		if err != nil {
			return err
		}
		streak = h.Streak
		return nil
	})
	return streak, err
}

// TaskCompletionHistory returns when one of the caller's tasks was
// completed, oldest first.
func (e *Engine) TaskCompletionHistory(ctx context.Context, id string) ([]uint64, error) {
	var out []uint64
	err := e.read(ctx, "task_completion_history", model.EntityTask, func(o *op) error {
		if _, err := getOwned(o, o.tx.Tasks(), model.EntityTask, id, taskOwner); err != nil {
			return err
		}
		var err error
		out, err = o.tx.Completions().List(ctx, id)
		return err
	})
	return out, err
}

// RewardsByOwner returns owner's Active rewards.
func (e *Engine) RewardsByOwner(ctx context.Context, owner string) ([]*model.Reward, error) {
	return e.rewardsIn(ctx, "rewards_by_owner", owner, model.RewardActive, "No active rewards found for ")
}

// RedeemedRewards returns owner's Completed rewards.
func (e *Engine) RedeemedRewards(ctx context.Context, owner string) ([]*model.Reward, error) {
	return e.rewardsIn(ctx, "redeemed_rewards", owner, model.RewardCompleted, "No completed rewards found for ")
}

func (e *Engine) rewardsIn(ctx context.Context, name, owner string, state model.RewardState, empty string) ([]*model.Reward, error) {
	var out []*model.Reward
	err := e.read(ctx, name, model.EntityReward, func(o *op) error {
		all, err := o.tx.Rewards().ByOwner(ctx, owner)
		if err != nil {
			return err
		}
		for _, r := range all {
			if r.State == state {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return noneFound(model.EntityReward, empty+owner)
		}
		return nil
	})
	return out, err
}

// TimeSlotsByOwner returns every slot owned by owner.
func (e *Engine) TimeSlotsByOwner(ctx context.Context, owner string) ([]*model.TimeSlot, error) {
	var out []*model.TimeSlot
	err := e.read(ctx, "time_slots_by_owner", model.EntityTimeSlot, func(o *op) error {
		var err error
		if out, err = o.tx.TimeSlots().ByOwner(ctx, owner); err != nil {
			return err
		}
		if len(out) == 0 {
			return noneFound(model.EntityTimeSlot, "No time slots found for "+owner)
		}
		return nil
	})
	return out, err
}

// TimeSlotsByTimeframe returns owner's slots whose minutes satisfy
// start < end' and end > start', optionally of one type. The comparison is
// on raw minutes, so slots wrapping midnight match only windows that reach
// past their start.
func (e *Engine) TimeSlotsByTimeframe(ctx context.Context, owner string, start, end uint32, typ *model.SlotType) ([]*model.TimeSlot, error) {
	var out []*model.TimeSlot
	err := e.read(ctx, "time_slots_by_timeframe", model.EntityTimeSlot, func(o *op) error {
		all, err := o.tx.TimeSlots().ByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return noneFound(model.EntityTimeSlot, "No time slots found for "+owner)
		}
		for _, s := range all {
			if s.StartMinutes < end && s.EndMinutes > start && (typ == nil || s.SlotType == *typ) {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return noneFound(model.EntityTimeSlot, "No time slots found in timeframe for "+owner)
		}
		return nil
	})
	return out, err
}

// RewardPoints returns owner's point balance.
func (e *Engine) RewardPoints(ctx context.Context, owner string) (uint32, error) {
	var pts uint32
	err := e.read(ctx, "reward_points", "Account", func(o *op) error {
		var err error
		pts, err = o.ledger().Balance(ctx, owner)
		return err
	})
	return pts, err
}

// StorageMetrics measures the stored footprint of an entity. kind is one of
// the model.Entity* names.
func (e *Engine) StorageMetrics(ctx context.Context, kind, id string) (quota.Metrics, error) {
	var m quota.Metrics
	err := e.read(ctx, "storage_metrics", kind, func(o *op) error {
		var (
			s     model.Sized
			found bool
			err   error
		)
		switch kind {
		case model.EntityTask:
			s, found, err = lookup(o, o.tx.Tasks().Get, id)
		case model.EntityHabit:
			s, found, err = lookup(o, o.tx.Habits().Get, id)
		case model.EntityReward:
			s, found, err = lookup(o, o.tx.Rewards().Get, id)
		case model.EntityTimeSlot:
			s, found, err = lookup(o, o.tx.TimeSlots().Get, id)
		default:
			return validationError(kind, "unknown entity kind "+kind)
		}
		if err != nil {
			return err
		}
		if !found {
			return notFound(kind, id)
		}
		m = e.quota.Measure(ctx, s)
		return nil
	})
	return m, err
}

func lookup[T any, P interface {
	*T
	model.Sized
}](o *op, get func(context.Context, string) (*T, bool, error), id string) (model.Sized, bool, error) {
	v, ok, err := get(o.ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return P(v), true, nil
}

// Snapshot is everything one owner has, as stored.
type Snapshot struct {
	Owner     string            `json:"owner"`
	Points    uint32            `json:"points"`
	Tasks     []*model.Task     `json:"tasks"`
	Habits    []*model.Habit    `json:"habits"`
	Rewards   []*model.Reward   `json:"rewards"`
	TimeSlots []*model.TimeSlot `json:"time_slots"`
}

// Snapshot returns all of owner's entities and points. Unlike the listing
// queries it never reports an empty result as an error.
func (e *Engine) Snapshot(ctx context.Context, owner string) (Snapshot, error) {
	snap := Snapshot{Owner: owner}
	err := e.read(ctx, "snapshot", "Account", func(o *op) error {
		var err error
		if snap.Points, err = o.ledger().Balance(ctx, owner); err != nil {
			return err
		}
		if snap.Tasks, err = o.tx.Tasks().ByOwner(ctx, owner); err != nil {
			return err
		}
		if snap.Habits, err = o.tx.Habits().ByOwner(ctx, owner); err != nil {
			return err
		}
		if snap.Rewards, err = o.tx.Rewards().ByOwner(ctx, owner); err != nil {
			return err
		}
		snap.TimeSlots, err = o.tx.TimeSlots().ByOwner(ctx, owner)
		return err
	})
	snap.Tasks = orEmpty(snap.Tasks)
	snap.Habits = orEmpty(snap.Habits)
	snap.Rewards = orEmpty(snap.Rewards)
	snap.TimeSlots = orEmpty(snap.TimeSlots)
	return snap, err
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
