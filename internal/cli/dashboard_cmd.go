package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depotcb/cbagent/internal/cli/formatter"
	"github.com/depotcb/cbagent/internal/contract"
)

func newDashboardCmd(app *App) *cobra.Command {
	var depot string
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the daily CB% series and summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rf.resolve()
			if err != nil {
				return err
			}
			resp, err := app.Dashboard.Summary(cmd.Context(), contract.DashboardRequest{
				DepotID:      depot,
				DateRange:    rng,
				LookbackDays: rf.days,
				Now:          app.now(),
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDashboard(resp)+"\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&depot, "depot", "", "Depot to show (default from config)")
	rf.register(cmd.Flags())
	return cmd
}
