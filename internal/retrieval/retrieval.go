// Package retrieval finds the stored chunks most similar to a query.
//
// Scoring always happens here, client side, so every store backend ranks
// identically.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/vectorstore"
)

// DefaultTopK is the number of matches returned when none is configured.
const DefaultTopK = 3

// Scope selects which namespaces a search runs over.
type Scope struct {
	All        bool
	Namespaces []string
}

// ScopeAll searches every namespace in the store.
func ScopeAll() Scope { return Scope{All: true} }

// ScopeOf searches only the given namespaces. An empty list matches
// nothing.
func ScopeOf(namespaces ...string) Scope { return Scope{Namespaces: namespaces} }

// Match is one retrieved chunk with its similarity score.
type Match struct {
	Namespace string
	Index     int
	Text      string
	Score     float64
}

// Engine embeds queries and ranks stored chunks by cosine similarity.
type Engine struct {
	store    vectorstore.Store
	embedder llm.Embedder
	topK     int
}

// New creates an Engine. k values below one fall back to DefaultTopK.
func New(store vectorstore.Store, embedder llm.Embedder, k int) *Engine {
	if k < 1 {
		k = DefaultTopK
	}
	return &Engine{store: store, embedder: embedder, topK: k}
}

// Retrieve returns up to k matches for the query, ordered by descending
// score. Ties rank by ascending namespace then chunk index, so results are
// deterministic. An empty scope or empty store yields an empty result, not
// an error.
func (e *Engine) Retrieve(ctx context.Context, query string, scope Scope) ([]Match, error) {
	logger := contextutil.LoggerFromContext(ctx)

	candidates, err := e.candidates(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.Debug("no candidate chunks in scope")
		return nil, nil
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches := make([]Match, 0, len(candidates))
	for _, rec := range candidates {
		matches = append(matches, Match{
			Namespace: rec.Namespace,
			Index:     rec.Index,
			Text:      rec.Text,
			Score:     CosineSimilarity(queryVec, rec.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Namespace != matches[j].Namespace {
			return matches[i].Namespace < matches[j].Namespace
		}
		return matches[i].Index < matches[j].Index
	})

	if len(matches) > e.topK {
		matches = matches[:e.topK]
	}
	logger.Debug("retrieved chunks", "candidates", len(candidates), "returned", len(matches))
	return matches, nil
}

func (e *Engine) candidates(ctx context.Context, scope Scope) ([]vectorstore.Record, error) {
	if scope.All {
		recs, err := e.store.GetAllIn(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read store: %w", err)
		}
		return recs, nil
	}
	if len(scope.Namespaces) == 0 {
		return nil, nil
	}
	recs, err := e.store.GetAllIn(ctx, scope.Namespaces)
	if err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	return recs, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors,
// accumulating in float64. Mismatched lengths or a zero-magnitude vector
// score 0 rather than erroring, which ranks such chunks last.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
