package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depotcb/cbagent/internal/cli/formatter"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load a metrics snapshot file into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Import == nil {
				return fmt.Errorf("import needs the local sqlite store (CBAGENT_STORE_DRIVER=sqlite)")
			}
			res, err := app.Import.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImport(res))
			return nil
		},
	}
}
