package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docchat/internal/ingest"
)

func newLoadCommand(app *App, ocr *bool) *cobra.Command {
	var jsonKey string

	cmd := &cobra.Command{
		Use:   "load <path>...",
		Short: "Ingest documents into the store",
		Long: `Ingests one or more documents. Supported formats are PDF, markdown,
structured JSON and plain text. Paths may be repeated or comma-separated.
Documents are identified by the SHA-256 of their content, so loading the
same file twice is a no-op.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := splitPaths(args)
			opts := ingest.Options{JSONKey: jsonKey}

			results, errs := app.ingester(*ocr).LoadAll(cmd.Context(), paths, opts)
			for _, res := range results {
				if res.Skipped {
					cmd.Printf("skipped %s: already ingested (%d chunks)\n", res.Path, res.ChunkCount)
					continue
				}
				cmd.Printf("loaded %s: %d chunks into %s\n", res.Path, res.ChunkCount, shortNS(res.Namespace))
			}
			for _, err := range errs {
				cmd.PrintErrf("error: %v\n", err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d documents failed", len(errs), len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonKey, "json-key", "", "object key holding the list to ingest from a JSON document")
	return cmd
}

// splitPaths expands comma-separated arguments into individual paths.
func splitPaths(args []string) []string {
	var paths []string
	for _, arg := range args {
		for _, p := range strings.Split(arg, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// shortNS abbreviates a namespace hash for display.
func shortNS(ns string) string {
	if len(ns) > 12 {
		return ns[:12]
	}
	return ns
}
