// Package cli provides the docchat command tree.
package cli

import (
	"github.com/spf13/cobra"

	"docchat/internal/ingest"
	"docchat/internal/llm"
	"docchat/internal/query"
	"docchat/internal/retrieval"
	"docchat/internal/splitter"
	"docchat/internal/vectorstore"
)

// App bundles the wired services the commands run against.
type App struct {
	Store     vectorstore.Store
	Embedder  llm.Embedder
	Generator llm.Generator
	Splitter  *splitter.Splitter

	TopK            int
	MaxContextChars int
}

func (a *App) ingester(ocr bool) *ingest.Ingester {
	return ingest.New(a.Store, a.Embedder, a.Splitter, ocr)
}

func (a *App) engine() *retrieval.Engine {
	return retrieval.New(a.Store, a.Embedder, a.TopK)
}

func (a *App) orchestrator() *query.Orchestrator {
	return query.New(a.engine(), a.Generator, a.MaxContextChars)
}

// NewRootCommand builds the docchat command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents",
		Long: `docchat ingests documents into a vector store and answers
questions about them using retrieval-augmented generation.`,
		SilenceUsage: true,
	}

	var ocr bool
	root.PersistentFlags().BoolVar(&ocr, "ocr", false, "run OCR on PDFs without a text layer")

	root.AddCommand(
		newLoadCommand(app, &ocr),
		newAskCommand(app),
		newChatCommand(app, &ocr),
		newNamespacesCommand(app),
	)
	return root
}
