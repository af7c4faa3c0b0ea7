package cli

import (
	"github.com/spf13/cobra"
)

// NewHabitCommand creates the habit command group. Habits are created by
// adding a task with --recurrence.
func NewHabitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Inspect habits and their streaks",
	}
	cmd.AddCommand(newHabitListCommand(rootOpts), newHabitStreakCommand(rootOpts))
	return cmd
}

func newHabitListCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List habits",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				habits, err := s.eng.HabitsByOwner(s.ctx(cmd), ownerOr(owner, s))
				if err != nil {
					return nil, err
				}
				return habitList(habits), nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner to list (default: the caller)")
	return cmd
}

func newHabitStreakCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "streak <id>",
		Short:         "Show a habit's current streak",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				streak, err := s.eng.HabitStreak(s.ctx(cmd), args[0])
				if err != nil {
					return nil, err
				}
				return streakView{ID: args[0], Streak: streak}, nil
			})
		},
	}
}
