package cli

import (
	"github.com/spf13/cobra"

	"docchat/internal/retrieval"
)

func newAskCommand(app *App) *cobra.Command {
	var (
		showSources bool
		namespaces  []string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a one-off question over everything ingested",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := retrieval.ScopeAll()
			if len(namespaces) > 0 {
				scope = retrieval.ScopeOf(namespaces...)
			}

			resp, err := app.orchestrator().Answer(cmd.Context(), args[0], scope)
			if err != nil {
				return err
			}

			cmd.Println(resp.Answer)
			if showSources && len(resp.Matches) > 0 {
				cmd.Println()
				for _, m := range resp.Matches {
					cmd.Printf("  [%s:%d] score %.4f\n", shortNS(m.Namespace), m.Index, m.Score)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", false, "print the chunks the answer was grounded on")
	cmd.Flags().StringSliceVar(&namespaces, "namespace", nil, "restrict retrieval to the given namespaces (default all)")
	return cmd
}
