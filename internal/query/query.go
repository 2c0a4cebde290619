// Package query answers questions by combining retrieval with generation.
package query

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/retrieval"
)

// DefaultMaxContextChars bounds how much retrieved text goes into a prompt.
const DefaultMaxContextChars = 8000

const systemPrompt = "Act as a world-class assistant with deep expertise " +
	"across multiple domains. Respond using only the provided context and " +
	"any directly relevant knowledge. Do not invent, speculate, or rely on " +
	"external assumptions. Prioritize accuracy, relevance, and clarity in " +
	"every answer"

// Response is an answer along with the chunks that grounded it.
type Response struct {
	Answer  string
	Matches []retrieval.Match
}

// Orchestrator runs the retrieve-then-generate flow.
type Orchestrator struct {
	engine          *retrieval.Engine
	generator       llm.Generator
	maxContextChars int
}

// New creates an Orchestrator. maxContextChars values below one fall back
// to DefaultMaxContextChars.
func New(engine *retrieval.Engine, generator llm.Generator, maxContextChars int) *Orchestrator {
	if maxContextChars < 1 {
		maxContextChars = DefaultMaxContextChars
	}
	return &Orchestrator{engine: engine, generator: generator, maxContextChars: maxContextChars}
}

// Answer retrieves context for the question within the scope and asks the
// model. When retrieval finds nothing the question is still sent, without
// a context block, so an empty store produces an answer rather than a
// refusal.
func (o *Orchestrator) Answer(ctx context.Context, question string, scope retrieval.Scope) (*Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	matches, err := o.engine.Retrieve(ctx, question, scope)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	userPrompt := buildPrompt(question, matches, o.maxContextChars)
	logger.Debug("asking model", "matches", len(matches), "prompt_chars", len(userPrompt))

	answer, err := o.generator.Chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	return &Response{Answer: answer, Matches: matches}, nil
}

// buildPrompt joins match texts best-first, dropping whole chunks once the
// budget is hit. Partial chunks read worse than fewer chunks.
func buildPrompt(question string, matches []retrieval.Match, maxContextChars int) string {
	var parts []string
	used := 0
	for _, m := range matches {
		if used+len(m.Text) > maxContextChars && len(parts) > 0 {
			break
		}
		parts = append(parts, m.Text)
		used += len(m.Text)
		if used > maxContextChars {
			break
		}
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Question: %s", question)
	}
	return fmt.Sprintf("Use this context:\n%s\n\nQuestion: %s",
		strings.Join(parts, "\n"), question)
}
