package cli

import (
	"github.com/spf13/cobra"
)

// NewRewardCommand creates the reward command group.
func NewRewardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Manage rewards and spend points on them",
	}
	cmd.AddCommand(
		newRewardAddCommand(rootOpts),
		newRewardUpdateCommand(rootOpts),
		newRewardDeleteCommand(rootOpts),
		newRewardRedeemCommand(rootOpts),
		newRewardListCommand(rootOpts),
	)
	return cmd
}

func newRewardAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		description string
		cost        uint32
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a reward",
		Long: `Add a reward that can be redeemed once for its cost in points.

Example:
  stride reward add "Movie night" --cost 40`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				id, err := s.eng.AddReward(s.ctx(cmd), args[0], description, cost)
				if err != nil {
					return nil, err
				}
				return doneView{Action: "added", ID: id}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "reward description")
	cmd.Flags().Uint32VarP(&cost, "cost", "c", 0, "cost in points")
	_ = cmd.MarkFlagRequired("cost")
	return cmd
}

func newRewardUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		description string
		cost        uint32
	)
	cmd := &cobra.Command{
		Use:           "update <id> <title>",
		Short:         "Replace an active reward's title, description and cost",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				if err := s.eng.UpdateReward(s.ctx(cmd), args[0], args[1], description, cost); err != nil {
					return nil, err
				}
				return doneView{Action: "updated", ID: args[0]}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "reward description")
	cmd.Flags().Uint32VarP(&cost, "cost", "c", 0, "cost in points")
	_ = cmd.MarkFlagRequired("cost")
	return cmd
}

func newRewardDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a reward",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				if err := s.eng.DeleteReward(s.ctx(cmd), args[0]); err != nil {
					return nil, err
				}
				return doneView{Action: "deleted", ID: args[0]}, nil
			})
		},
	}
}

func newRewardRedeemCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "redeem <id>",
		Short:         "Spend points on a reward",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				balance, err := s.eng.RedeemReward(s.ctx(cmd), args[0])
				if err != nil {
					return nil, err
				}
				return redeemView{ID: args[0], Balance: balance}, nil
			})
		},
	}
}

func newRewardListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner    string
		redeemed bool
	)
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List active rewards, or redeemed ones with --redeemed",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				query := s.eng.RewardsByOwner
				if redeemed {
					query = s.eng.RedeemedRewards
				}
				rewards, err := query(s.ctx(cmd), ownerOr(owner, s))
				if err != nil {
					return nil, err
				}
				return rewardList(rewards), nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner to list (default: the caller)")
	cmd.Flags().BoolVar(&redeemed, "redeemed", false, "list redeemed rewards")
	return cmd
}
