package model

import (
	"fmt"
	"slices"
)

// TaskSlot is a scheduled [Start, End) interval in nanoseconds.
type TaskSlot struct {
	Start uint64 `json:"start_time"`
	End   uint64 `json:"end_time"`
}

// Task is a unit of work owned by one caller. Tasks may have a parent and
// subtasks; both are weak references by id.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      Priority   `json:"priority"`
	Deadline      uint64     `json:"deadline"`
	EstimatedTime uint32     `json:"estimated_time"`
	RewardPoints  uint32     `json:"reward_points"`
	TimeSlots     []TaskSlot `json:"time_slots"`
	State         TaskState  `json:"state"`
	Owner         string     `json:"owner"`
	ParentID      string     `json:"parent_task_id,omitempty"`
	SubtaskIDs    []string   `json:"subtask_ids"`
}

// TaskFields are the caller-editable fields of a task.
type TaskFields struct {
	Title         string
	Description   string
	Priority      Priority
	Deadline      uint64
	EstimatedTime uint32
	// TimeSlots replaces the schedule when non-nil.
	TimeSlots []TaskSlot
}

// NewTask builds a Created task and validates it.
func NewTask(env Env, id, owner, parentID string, f TaskFields) (*Task, error) {
	t := &Task{
		ID:         id,
		State:      TaskCreated,
		Owner:      owner,
		ParentID:   parentID,
		TimeSlots:  []TaskSlot{},
		SubtaskIDs: []string{},
	}
	t.Apply(f)
	if err := t.Validate(env); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply overwrites the editable fields and recomputes reward points. It does
// not validate.
func (t *Task) Apply(f TaskFields) {
	t.Title = f.Title
	t.Description = f.Description
	t.Priority = f.Priority
	t.Deadline = f.Deadline
	t.EstimatedTime = f.EstimatedTime
	if f.TimeSlots != nil {
		t.TimeSlots = slices.Clone(f.TimeSlots)
	}
	t.RewardPoints = RewardPointsFor(t.EstimatedTime, t.Priority)
}

// RewardPointsFor returns one point per half hour of estimated work, rounding
// a remainder of 15 minutes or more up, scaled by priority.
func RewardPointsFor(minutes uint32, p Priority) uint32 {
	base := minutes / 30
	if minutes%30 >= 15 {
		base++
	}
	return base * p.Multiplier()
}

// Validate runs the task pipeline: title, description, priority, deadline,
// estimated time, timing, subtasks and storage. Title and description are
// trimmed on success.
func (t *Task) Validate(env Env) error {
	title, err := checkTitle(EntityTask, t.Title)
	if err != nil {
		return err
	}
	t.Title = title

	desc, err := checkDescription(EntityTask, t.Description)
	if err != nil {
		return err
	}
	t.Description = desc

	if !t.Priority.Valid() {
		return fieldErr(EntityTask, "priority", ReasonUnknown, t.Priority)
	}
	if err := t.validateDeadline(env.Now()); err != nil {
		return err
	}
	if err := t.validateEstimate(); err != nil {
		return err
	}
	if err := t.validateTiming(); err != nil {
		return err
	}
	if err := t.validateSubtasks(); err != nil {
		return err
	}
	return env.CheckStorage(t)
}

func (t *Task) validateDeadline(now uint64) error {
	// An overdue task is already past its deadline.
	if t.State == TaskOverdue {
		return nil
	}
	if t.Deadline <= now {
		return fieldErr(EntityTask, "deadline", ReasonPastDeadline, t.Deadline)
	}
	if t.Deadline >= now+MaxFutureTime {
		return fieldErr(EntityTask, "deadline", ReasonTooFarInFuture, t.Deadline)
	}
	if end, ok := t.LatestEnd(); ok && t.Deadline <= end {
		return fieldErr(EntityTask, "deadline", ReasonBeforeEndTime, t.Deadline)
	}
	return nil
}

func (t *Task) validateEstimate() error {
	if t.EstimatedTime >= MinutesPerDay {
		return fieldErr(EntityTask, "estimated_time", ReasonTooLong, t.EstimatedTime)
	}
	if t.EstimatedTime == 0 {
		return fieldErr(EntityTask, "estimated_time", ReasonZero, nil)
	}
	return nil
}

func (t *Task) validateTiming() error {
	for _, s := range t.TimeSlots {
		if s.End <= s.Start {
			return fieldErr(EntityTask, "time_slots", ReasonEndBeforeStart, s.End)
		}
	}
	for i := range t.TimeSlots {
		for j := i + 1; j < len(t.TimeSlots); j++ {
			a, b := t.TimeSlots[i], t.TimeSlots[j]
			if a.Start < b.End && a.End > b.Start {
				return fieldErr(EntityTask, "time_slots", ReasonOverlappingSlots, b.Start)
			}
		}
	}
	return nil
}

func (t *Task) validateSubtasks() error {
	seen := make(map[string]struct{}, len(t.SubtaskIDs))
	for _, id := range t.SubtaskIDs {
		if _, dup := seen[id]; dup {
			return fieldErr(EntityTask, "subtasks", ReasonDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// LatestEnd returns the end of the last scheduled slot.
func (t *Task) LatestEnd() (uint64, bool) {
	if len(t.TimeSlots) == 0 {
		return 0, false
	}
	var end uint64
	for _, s := range t.TimeSlots {
		end = max(end, s.End)
	}
	return end, true
}

// ValidateStateForAction rejects updates to a completed task.
func (t *Task) ValidateStateForAction(a Action) error {
	if t.State == TaskCompleted && a == ActionUpdate {
		return &ActionError{Entity: EntityTask, State: string(t.State), Action: a}
	}
	return nil
}

// TransitionTo moves the task along a state machine edge. A subtask may be
// completed from any state. Created and InProgress tasks may become Overdue
// only once now is past the deadline.
func (t *Task) TransitionTo(to TaskState, now uint64) error {
	if to == TaskCompleted && t.ParentID != "" {
		t.State = to
		return nil
	}
	ok := false
	switch {
	case t.State == TaskCreated && to == TaskInProgress:
		ok = true
	case t.State == TaskInProgress && to == TaskCompleted:
		ok = true
	case (t.State == TaskCreated || t.State == TaskInProgress) && to == TaskOverdue:
		ok = now > t.Deadline
	case t.State == TaskOverdue && to == TaskCompleted:
		ok = true
	}
	if !ok {
		return &TransitionError{Entity: EntityTask, From: string(t.State), To: string(to)}
	}
	t.State = to
	return nil
}

// AddSubtask registers childID as a subtask. parentOf resolves the parent of
// a task id; registering a task that is an ancestor of t is rejected.
func (t *Task) AddSubtask(childID string, parentOf func(id string) string) error {
	if slices.Contains(t.SubtaskIDs, childID) {
		return fieldErr(EntityTask, "subtasks", ReasonDuplicateID, childID)
	}
	seen := map[string]bool{}
	for cur := t.ID; cur != "" && !seen[cur]; cur = parentOf(cur) {
		if cur == childID {
			return fieldErr(EntityTask, "subtasks", ReasonCircularDependency, childID)
		}
		seen[cur] = true
	}
	t.SubtaskIDs = append(t.SubtaskIDs, childID)
	return nil
}

// RemoveSubtask unlinks childID and reports whether it was linked.
func (t *Task) RemoveSubtask(childID string) bool {
	i := slices.Index(t.SubtaskIDs, childID)
	if i < 0 {
		return false
	}
	t.SubtaskIDs = slices.Delete(t.SubtaskIDs, i, i+1)
	return true
}

// Schedule appends a slot starting at start and lasting the estimated time.
func (t *Task) Schedule(start uint64) {
	t.TimeSlots = append(t.TimeSlots, TaskSlot{
		Start: start,
		End:   start + uint64(t.EstimatedTime)*NanosPerMinute,
	})
}

// Split replaces the schedule with contiguous slots between consecutive
// split points, taken in ascending order.
func (t *Task) Split(points []uint64) error {
	if len(points) < 2 {
		return fmt.Errorf("need at least two split points, got %d", len(points))
	}
	sorted := slices.Clone(points)
	slices.Sort(sorted)
	t.TimeSlots = make([]TaskSlot, 0, len(sorted)-1)
	for i := 0; i+1 < len(sorted); i++ {
		t.TimeSlots = append(t.TimeSlots, TaskSlot{Start: sorted[i], End: sorted[i+1]})
	}
	return nil
}

// ClearSlots drops the schedule.
func (t *Task) ClearSlots() {
	t.TimeSlots = []TaskSlot{}
}

// Recur resets a completed task for its next occurrence.
func (t *Task) Recur(deadline uint64) {
	t.State = TaskCreated
	t.Deadline = deadline
	t.ClearSlots()
}

// Clone returns a deep copy.
func (t *Task) Clone() *Task {
	c := *t
	c.TimeSlots = slices.Clone(t.TimeSlots)
	c.SubtaskIDs = slices.Clone(t.SubtaskIDs)
	if c.TimeSlots == nil {
		c.TimeSlots = []TaskSlot{}
	}
	if c.SubtaskIDs == nil {
		c.SubtaskIDs = []string{}
	}
	return &c
}

func (t *Task) BaseStorage() uint64 { return TaskBaseStorage }
func (t *Task) MaxStorage() uint64  { return TaskMaxStorage }

func (t *Task) DynamicSize() uint64 {
	return uint64(len(t.ID)+len(t.Title)+len(t.Description)+len(t.Owner)+len(t.ParentID)) +
		idsSize(t.SubtaskIDs)
}
