package model

// Habit tracks the completion streak of a recurring task.
type Habit struct {
	ID         string     `json:"id"`
	TaskID     string     `json:"task_id"`
	Recurrence Recurrence `json:"recurrence"`
	Streak     uint32     `json:"streak"`
	// LastCompleted is zero until the first completion.
	LastCompleted uint64 `json:"last_completed"`
	Owner         string `json:"owner"`
}

// NewHabit links a fresh habit to taskID and validates it.
func NewHabit(env Env, id, taskID, owner string, r Recurrence) (*Habit, error) {
	h := &Habit{ID: id, TaskID: taskID, Recurrence: r.Clone(), Owner: owner}
	if err := h.Validate(env); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the recurrence and the storage footprint.
func (h *Habit) Validate(env Env) error {
	if err := h.Recurrence.validate(EntityHabit); err != nil {
		return err
	}
	return env.CheckStorage(h)
}

// Record applies a completion at now: the streak grows if it is continuous
// and restarts at zero otherwise. It returns the next deadline.
func (h *Habit) Record(now uint64) uint64 {
	if h.Recurrence.Continuous(now, h.LastCompleted) {
		h.Streak++
	} else {
		h.Streak = 0
	}
	h.LastCompleted = now
	return h.Recurrence.NextDeadline(now)
}

// Clone returns a deep copy.
func (h *Habit) Clone() *Habit {
	c := *h
	c.Recurrence = h.Recurrence.Clone()
	return &c
}

func (h *Habit) BaseStorage() uint64 { return HabitBaseStorage }
func (h *Habit) MaxStorage() uint64  { return HabitMaxStorage }

func (h *Habit) DynamicSize() uint64 {
	return uint64(len(h.ID)+len(h.TaskID)+len(h.Owner)) + h.Recurrence.size()
}
