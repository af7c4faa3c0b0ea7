package cli

import (
	"github.com/spf13/cobra"
)

// NewPointsCommand creates the points command.
func NewPointsCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           "points",
		Short:         "Show a point balance",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) (any, error) {
				who := ownerOr(owner, s)
				pts, err := s.eng.RewardPoints(s.ctx(cmd), who)
				if err != nil {
					return nil, err
				}
				return pointsView{Owner: who, Points: pts}, nil
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "whose balance (default: the caller)")
	return cmd
}
