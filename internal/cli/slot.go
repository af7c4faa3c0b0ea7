package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/model"
)

// NewSlotCommand creates the slot command group.
func NewSlotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Manage recurring working hours and breaks",
		Long: `Time slots mark recurring parts of the day as working hours or breaks.
Times are "HH:MM". A slot whose end is before its start wraps past
midnight. Slots of the same type may not overlap.`,
	}
	cmd.AddCommand(
		newSlotAddCommand(rootOpts),
		newSlotUpdateCommand(rootOpts),
		newSlotDeleteCommand(rootOpts),
		newSlotListCommand(rootOpts),
	)
	return cmd
}

// parseSlotTimes reads start and end times of day plus a recurrence.
func parseSlotTimes(startStr, endStr, recurrence string) (start, end uint32, rec model.Recurrence, err error) {
	if start, err = model.ParseMinutes(startStr); err != nil {
		return
	}
	if end, err = model.ParseMinutes(endStr); err != nil {
		return
	}
	rec, err = model.ParseRecurrence(recurrence)
	return
}

func newSlotAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		slotType   string
		recurrence string
	)
	cmd := &cobra.Command{
		Use:   "add <start> <end>",
		Short: "Add a time slot",
		Long: `Add a time slot.

Example:
  stride slot add 09:00 17:00 --type WorkingHours
  stride slot add 12:30 13:00 --type Break --recurrence Monday,Wednesday,Friday
  stride slot add 22:00 06:00 --type Break`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				start, end, rec, err := parseSlotTimes(args[0], args[1], recurrence)
				if err != nil {
					return nil, err
				}
				typ, err := model.ParseSlotType(slotType)
				if err != nil {
					return nil, err
				}
				id, err := s.eng.AddTimeSlot(s.ctx(cmd), engine.TimeSlotInput{
					StartMinutes: start,
					EndMinutes:   end,
					SlotType:     typ,
					Recurrence:   rec,
				})
				if err != nil {
					return nil, err
				}
				return doneView{Action: "added", ID: id}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&slotType, "type", "t", "WorkingHours", "slot type (WorkingHours|Break)")
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", "daily", "repeat pattern (daily, daily/N, Monday,Thursday)")
	return cmd
}

func newSlotUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var recurrence string
	cmd := &cobra.Command{
		Use:           "update <id> <start> <end>",
		Short:         "Move a time slot",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				start, end, rec, err := parseSlotTimes(args[1], args[2], recurrence)
				if err != nil {
					return nil, err
				}
				if err := s.eng.UpdateTimeSlot(s.ctx(cmd), args[0], start, end, rec); err != nil {
					return nil, err
				}
				return doneView{Action: "updated", ID: args[0]}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&recurrence, "recurrence", "r", "daily", "repeat pattern (daily, daily/N, Monday,Thursday)")
	return cmd
}

func newSlotDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a time slot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				if err := s.eng.DeleteTimeSlot(s.ctx(cmd), args[0]); err != nil {
					return nil, err
				}
				return doneView{Action: "deleted", ID: args[0]}, nil
			})
		},
	}
}

func newSlotListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner    string
		from, to string
		slotType string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time slots",
		Long: `List time slots. With --from and --to, only slots intersecting that
part of the day are listed, optionally filtered by --type.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				ctx, who := s.ctx(cmd), ownerOr(owner, s)
				if from == "" && to == "" {
					if slotType != "" {
						return nil, fmt.Errorf("--type needs --from and --to")
					}
					slots, err := s.eng.TimeSlotsByOwner(ctx, who)
					if err != nil {
						return nil, err
					}
					return slotList(slots), nil
				}
				if from == "" || to == "" {
					return nil, fmt.Errorf("--from and --to go together")
				}
				start, err := model.ParseMinutes(from)
				if err != nil {
					return nil, err
				}
				end, err := model.ParseMinutes(to)
				if err != nil {
					return nil, err
				}
				var typ *model.SlotType
				if slotType != "" {
					t, err := model.ParseSlotType(slotType)
					if err != nil {
						return nil, err
					}
					typ = &t
				}
				slots, err := s.eng.TimeSlotsByTimeframe(ctx, who, start, end, typ)
				if err != nil {
					return nil, err
				}
				return slotList(slots), nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner to list (default: the caller)")
	cmd.Flags().StringVar(&from, "from", "", "start of the timeframe (HH:MM)")
	cmd.Flags().StringVar(&to, "to", "", "end of the timeframe (HH:MM)")
	cmd.Flags().StringVarP(&slotType, "type", "t", "", "only slots of this type")
	return cmd
}
