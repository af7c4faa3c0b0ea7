package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/model"
)

// NewTaskCommand creates the task command group.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, schedule and complete tasks",
	}
	cmd.AddCommand(
		newTaskAddCommand(rootOpts),
		newTaskUpdateCommand(rootOpts),
		newTaskStartCommand(rootOpts),
		newTaskSplitCommand(rootOpts),
		newTaskCompleteCommand(rootOpts),
		newTaskOverdueCommand(rootOpts),
		newTaskDeleteCommand(rootOpts),
		newTaskListCommand(rootOpts),
		newTaskHistoryCommand(rootOpts),
	)
	return cmd
}

// taskFlags are the editable task fields shared by add and update.
type taskFlags struct {
	Description string
	Priority    string
	Deadline    string
	Estimate    uint32
	Slots       []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "Medium", "priority (Low|Medium|High|Critical)")
	cmd.Flags().StringVar(&f.Deadline, "deadline", "24h", "deadline as a duration from now, RFC 3339 time or nanoseconds")
	cmd.Flags().Uint32VarP(&f.Estimate, "estimate", "e", 30, "estimated time in minutes")
	cmd.Flags().StringSliceVar(&f.Slots, "slot", nil, "scheduled slot as start/end (repeatable)")
}

func (f *taskFlags) fields(title string, now time.Time) (engine.TaskUpdate, error) {
	priority, err := model.ParsePriority(f.Priority)
	if err != nil {
		return engine.TaskUpdate{}, err
	}
	deadline, err := parseWhen(f.Deadline, now)
	if err != nil {
		return engine.TaskUpdate{}, fmt.Errorf("--deadline: %w", err)
	}
	slots, err := parseSlots(f.Slots, now)
	if err != nil {
		return engine.TaskUpdate{}, fmt.Errorf("--slot: %w", err)
	}
	return engine.TaskUpdate{
		Title:         title,
		Description:   f.Description,
		Priority:      priority,
		Deadline:      deadline,
		EstimatedTime: f.Estimate,
		TimeSlots:     slots,
	}, nil
}

func newTaskAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		flags      taskFlags
		parent     string
		recurrence string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a task owned by the caller.

A --recurrence pattern turns the task into a habit: completing it resets it
for the next occurrence and tracks a streak. Patterns are "daily",
"daily/N" or a list of weekdays such as "Monday,Thursday".

Example:
  stride task add "Write report" --priority High --deadline 48h --estimate 90
  stride task add "Run" --recurrence daily --estimate 45
  stride task add "Outline" --parent task-1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				f, err := flags.fields(args[0], time.Now())
				if err != nil {
					return nil, err
				}
				var rec *model.Recurrence
				if recurrence != "" {
					r, err := model.ParseRecurrence(recurrence)
					if err != nil {
						return nil, err
					}
					rec = &r
				}
				id, err := s.eng.AddTask(s.ctx(cmd), engine.TaskInput{
					Title:         f.Title,
					Description:   f.Description,
					Priority:      f.Priority,
					Deadline:      f.Deadline,
					EstimatedTime: f.EstimatedTime,
					TimeSlots:     f.TimeSlots,
					ParentID:      parent,
					Recurrence:    rec,
				})
				if err != nil {
					return nil, err
				}
				return doneView{Action: "added", ID: id}, nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&parent, "parent", "", "make this a subtask of the given task")
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", "", "repeat pattern (daily, daily/N, Monday,Thursday)")
	return cmd
}

func newTaskUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "update <id> <title>",
		Short: "Replace a task's editable fields",
		Long: `Replace a task's title, description, priority, deadline, estimate and
schedule. Fields not given on the command line take their defaults.
Completed tasks cannot be updated.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				f, err := flags.fields(args[1], time.Now())
				if err != nil {
					return nil, err
				}
				if err := s.eng.UpdateTask(s.ctx(cmd), args[0], f); err != nil {
					return nil, err
				}
				return doneView{Action: "updated", ID: args[0]}, nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTaskStartCommand(rootOpts *RootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Schedule a task and mark it in progress",
		Long: `Schedule a slot for the task starting at --at and lasting its
estimated time, then move it to InProgress.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				start, err := parseWhen(at, time.Now())
				if err != nil {
					return nil, fmt.Errorf("--at: %w", err)
				}
				if err := s.eng.StartTask(s.ctx(cmd), args[0], start); err != nil {
					return nil, err
				}
				return doneView{Action: "started", ID: args[0]}, nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "0s", "start time as a duration from now, RFC 3339 time or nanoseconds")
	return cmd
}

func newTaskSplitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "split <id> <time> <time>...",
		Short: "Split a task's schedule at the given times",
		Long: `Replace the task's schedule with contiguous slots between the given
times, which are sorted first.

Example:
  stride task split task-1 1h 2h 3h`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				now := time.Now()
				points := make([]uint64, 0, len(args)-1)
				for _, a := range args[1:] {
					p, err := parseWhen(a, now)
					if err != nil {
						return nil, err
					}
					points = append(points, p)
				}
				if err := s.eng.SplitTask(s.ctx(cmd), args[0], points); err != nil {
					return nil, err
				}
				return doneView{Action: "split", ID: args[0]}, nil
			})
		},
	}
}

func newTaskCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "complete <id>",
		Short:         "Complete a task and collect its points",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				c, err := s.eng.CompleteTask(s.ctx(cmd), args[0])
				if err != nil {
					return nil, err
				}
				return completionView(c), nil
			})
		},
	}
}

func newTaskOverdueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "overdue <id>",
		Short:         "Mark a task whose deadline has passed as overdue",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				if err := s.eng.MarkTaskOverdue(s.ctx(cmd), args[0]); err != nil {
					return nil, err
				}
				return doneView{Action: "overdue", ID: args[0]}, nil
			})
		},
	}
}

func newTaskDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a task and its direct subtasks",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				if err := s.eng.DeleteTask(s.ctx(cmd), args[0]); err != nil {
					return nil, err
				}
				return doneView{Action: "deleted", ID: args[0]}, nil
			})
		},
	}
}

func newTaskListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner string
		state string
	)
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List tasks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				query := s.eng.TasksByOwner
				switch state {
				case "all":
				case "incomplete":
					query = s.eng.IncompleteTasks
				case "completed":
					query = s.eng.CompletedTasks
				default:
					return nil, fmt.Errorf("invalid --state %q: must be all, incomplete or completed", state)
				}
				tasks, err := query(s.ctx(cmd), ownerOr(owner, s))
				if err != nil {
					return nil, err
				}
				return taskList(tasks), nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner to list (default: the caller)")
	cmd.Flags().StringVar(&state, "state", "all", "which tasks (all|incomplete|completed)")
	return cmd
}

func newTaskHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <id>",
		Short:         "Show when a task was completed",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				history, err := s.eng.TaskCompletionHistory(s.ctx(cmd), args[0])
				if err != nil {
					return nil, err
				}
				return historyView{ID: args[0], Completions: history}, nil
			})
		},
	}
}

// ownerOr returns owner, or the session's caller when owner is empty.
func ownerOr(owner string, s *session) string {
	if owner != "" {
		return owner
	}
	return s.caller
}
