package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depotcb/cbagent/internal/cli/formatter"
	"github.com/depotcb/cbagent/internal/contract"
)

func newExplainCmd(app *App) *cobra.Command {
	var depot string
	comparison := newDateRangeValue()
	baseline := newDateRangeValue()

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Break a CB% change into additive factors",
		Example: "  cbagent explain --comparison 2025-06-08:2025-06-14\n" +
			"  cbagent explain --depot 7634 --comparison 2025-06-08:2025-06-14 --baseline 2025-05-01:2025-05-07",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.ExplainRequest{
				DepotID:  depot,
				Baseline: baseline.Range(),
			}
			if r := comparison.Range(); r != nil {
				req.Comparison = *r
			}
			resp, err := app.Explain.Explain(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatExplanation(resp)+"\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&depot, "depot", "", "Depot to analyze (default from config)")
	cmd.Flags().Var(comparison, "comparison", "Window to explain, FROM:TO")
	cmd.Flags().Var(baseline, "baseline", "Baseline window, FROM:TO (default: the equally long window before)")
	_ = cmd.MarkFlagRequired("comparison")
	return cmd
}
