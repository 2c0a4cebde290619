package cli

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"docchat/internal/ingest"
	"docchat/internal/retrieval"
	"docchat/internal/session"
)

const chatHelp = `Commands:
  :load <path>...    ingest documents and add them to this session
  :scope all|loaded  answer from everything or only session documents
  :namespaces        list documents loaded this session
  :help              show this help
  :quit              leave the chat

Anything else is a question.`

func newChatCommand(app *App, ocr *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Starts a read-eval loop. Documents loaded with :load are tracked in a
session-scoped set; with ":scope loaded" answers draw only on those,
regardless of what else the store holds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repl := &chatLoop{
				app:     app,
				ocr:     *ocr,
				session: session.New(),
				scope:   "all",
			}
			return repl.run(cmd)
		},
	}
}

type chatLoop struct {
	app     *App
	ocr     bool
	session *session.Session
	scope   string
}

func (c *chatLoop) run(cmd *cobra.Command) error {
	cmd.Println("docchat - type :help for commands, :quit to leave")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := c.handleCommand(cmd, line); quit {
				return nil
			}
			continue
		}
		c.answer(cmd, line)
	}
}

// handleCommand runs one colon command and reports whether to quit.
func (c *chatLoop) handleCommand(cmd *cobra.Command, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":exit", ":q":
		return true
	case ":help":
		cmd.Println(chatHelp)
	case ":load":
		if len(fields) < 2 {
			cmd.Println("usage: :load <path>...")
			return false
		}
		c.load(cmd, splitPaths(fields[1:]))
	case ":scope":
		if len(fields) != 2 || (fields[1] != "all" && fields[1] != "loaded") {
			cmd.Println("usage: :scope all|loaded")
			return false
		}
		c.scope = fields[1]
		if c.scope == "loaded" && c.session.Len() == 0 {
			cmd.Println("scope set to loaded; no documents loaded yet, use :load first")
			return false
		}
		cmd.Printf("scope set to %s\n", c.scope)
	case ":namespaces":
		if c.session.Len() == 0 {
			cmd.Println("no documents loaded this session")
			return false
		}
		for _, ns := range c.session.Namespaces() {
			cmd.Println(ns)
		}
	default:
		cmd.Printf("unknown command %s, type :help\n", fields[0])
	}
	return false
}

func (c *chatLoop) load(cmd *cobra.Command, paths []string) {
	results, errs := c.app.ingester(c.ocr).LoadAll(cmd.Context(), paths, ingest.Options{})
	for _, res := range results {
		c.session.Add(res.Namespace)
		if res.Skipped {
			cmd.Printf("already ingested %s (%d chunks), added to session\n", res.Path, res.ChunkCount)
			continue
		}
		cmd.Printf("loaded %s: %d chunks\n", res.Path, res.ChunkCount)
	}
	for _, err := range errs {
		cmd.PrintErrf("error: %v\n", err)
	}
}

func (c *chatLoop) answer(cmd *cobra.Command, question string) {
	scope := retrieval.ScopeAll()
	if c.scope == "loaded" {
		scope = retrieval.ScopeOf(c.session.Namespaces()...)
	}

	resp, err := c.app.orchestrator().Answer(cmd.Context(), question, scope)
	if err != nil {
		cmd.PrintErrf("error: %v\n", err)
		return
	}
	cmd.Println(resp.Answer)
}
