package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depotcb/cbagent/internal/cli/formatter"
	"github.com/depotcb/cbagent/internal/contract"
)

func newAskCmd(app *App) *cobra.Command {
	var depot string
	var dryRun bool
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   `ask ["question"]`,
		Short: "Answer a natural-language question about CB%",
		Long: "Plan the question into a parameterized query, run it against the metrics store and, " +
			"for drop or missing-item questions, add the root cause or item recommendations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				if !app.interactive() {
					return fmt.Errorf("a question is required")
				}
				prompt := app.PromptQuestion
				if prompt == nil {
					prompt = promptQuestion
				}
				if err := prompt(&question); err != nil {
					return fmt.Errorf("reading question: %w", err)
				}
			}

			rng, err := rf.resolve()
			if err != nil {
				return err
			}
			req := contract.NewAskRequest(question)
			req.DepotID = depot
			req.DateRange = rng
			req.LookbackDays = rf.days
			req.Now = app.now()
			req.DryRun = dryRun

			resp, err := app.Ask.Ask(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAnswer(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&depot, "depot", "", "Depot used when the question names none")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan and query without running it")
	rf.register(cmd.Flags())
	return cmd
}
