package cli

import (
	"github.com/spf13/cobra"
)

func newNamespacesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "namespaces",
		Short: "List ingested document namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			namespaces, err := app.Store.Namespaces(ctx)
			if err != nil {
				return err
			}
			if len(namespaces) == 0 {
				cmd.Println("No documents ingested.")
				return nil
			}

			for _, ns := range namespaces {
				recs, err := app.Store.GetAll(ctx, ns)
				if err != nil {
					return err
				}
				cmd.Printf("%s  %d chunks\n", ns, len(recs))
			}
			return nil
		},
	}
}
