package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depotcb/cbagent/internal/cli/formatter"
	"github.com/depotcb/cbagent/internal/contract"
)

func newRecommendCmd(app *App) *cobra.Command {
	var depot string
	var top, minOrders int
	var items []string
	var capture float64
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank assortment changes by predicted CB% impact",
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := rf.resolve()
			if err != nil {
				return err
			}
			req := contract.NewRecommendRequest(depot, top)
			req.DateRange = rng
			req.LookbackDays = rf.days
			req.Now = app.now()
			req.CandidateItems = items
			req.MinOrderFrequency = minOrders
			req.CaptureRate = capture

			resp, err := app.Recommend.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRecommendations(resp)+"\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&depot, "depot", "", "Depot to analyze (default from config)")
	cmd.Flags().IntVar(&top, "top", 0, "Number of recommendations (0 = configured default)")
	cmd.Flags().StringSliceVar(&items, "items", nil, "Simulate only these item ids (comma separated)")
	cmd.Flags().IntVar(&minOrders, "min-orders", 0, "Minimum distinct orders for a discovered candidate")
	cmd.Flags().Float64Var(&capture, "capture-rate", 0, "Share of avoided substitutions that become attained orders")
	rf.register(cmd.Flags())
	return cmd
}
