package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/depotcb/cbagent/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Ask       service.AskService
	Recommend service.RecommendService
	Explain   service.ExplainService
	Dashboard service.DashboardService
	Import    service.ImportService

	// IsInteractive reports whether stdin is a terminal. It gates the
	// question prompt of `ask`.
	IsInteractive func() bool
	// PromptQuestion asks for a question interactively. Nil uses the huh form.
	PromptQuestion func(value *string) error
	// Now pins the clock for relative dates. Nil uses the wall clock.
	Now func() time.Time
}

// NewRootCmd creates the top-level "cbagent" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cbagent",
		Short:         "Complete-basket (CB%) analytics for depots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAskCmd(app),
		newRecommendCmd(app),
		newExplainCmd(app),
		newDashboardCmd(app),
		newImportCmd(app),
	)
	return root
}

func (a *App) now() *time.Time {
	if a.Now == nil {
		return nil
	}
	t := a.Now()
	return &t
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
