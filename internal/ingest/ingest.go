// Package ingest drives the document loading pipeline: hash, extract,
// chunk, embed and persist.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"docchat/internal/contextutil"
	"docchat/internal/extract"
	"docchat/internal/llm"
	"docchat/internal/namespace"
	"docchat/internal/splitter"
	"docchat/internal/vectorstore"
)

// Options tune a single ingestion run.
type Options struct {
	// JSONKey selects the list to ingest from a top-level JSON object.
	JSONKey string
}

// Result describes one ingested document.
type Result struct {
	Path       string
	Namespace  string
	ChunkCount int
	// Skipped is true when the document content was already in the store
	// and no embedding or writing happened.
	Skipped bool
}

// Ingester loads documents into the vector store. Documents are identified
// by the SHA-256 of their content, so re-ingesting the same bytes is a
// no-op regardless of filename.
type Ingester struct {
	store    vectorstore.Store
	embedder llm.Embedder
	splitter *splitter.Splitter
	ocr      bool
}

// New creates an Ingester. A nil splitter uses the default chunk geometry.
func New(store vectorstore.Store, embedder llm.Embedder, split *splitter.Splitter, ocr bool) *Ingester {
	if split == nil {
		split = splitter.New(splitter.DefaultChunkSize, splitter.DefaultOverlap)
	}
	return &Ingester{store: store, embedder: embedder, splitter: split, ocr: ocr}
}

// Ingest loads one document. The content hash is checked first: if the
// namespace already exists the stored chunk count is returned and nothing
// is embedded or written. Otherwise every chunk is embedded before any
// record is persisted, so an embedding failure leaves the store without a
// partial document.
func (in *Ingester) Ingest(ctx context.Context, path string, opts Options) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	ns, err := namespace.FromFile(path)
	if err != nil {
		return nil, err
	}

	exists, err := in.store.Exists(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("failed to check namespace %s: %w", ns, err)
	}
	if exists {
		recs, err := in.store.GetAll(ctx, ns)
		if err != nil {
			return nil, fmt.Errorf("failed to read namespace %s: %w", ns, err)
		}
		logger.Info("document already ingested, skipping",
			"path", path, "namespace", ns, "chunks", len(recs))
		return &Result{Path: path, Namespace: ns, ChunkCount: len(recs), Skipped: true}, nil
	}

	chunks, err := in.chunksFor(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", path, extract.ErrNoText)
	}

	logger.Debug("embedding chunks", "path", path, "chunks", len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := in.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of %s: %w", i, path, err)
		}
		vectors[i] = vec
	}

	for i, chunk := range chunks {
		rec := vectorstore.Record{Namespace: ns, Index: i, Text: chunk, Vector: vectors[i]}
		if err := in.store.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to store chunk %d of %s: %w", i, path, err)
		}
	}

	logger.Info("document ingested", "path", path, "namespace", ns, "chunks", len(chunks))
	return &Result{Path: path, Namespace: ns, ChunkCount: len(chunks)}, nil
}

// LoadAll ingests each path in turn. A failing document does not stop the
// run; its error is collected and the rest proceed.
func (in *Ingester) LoadAll(ctx context.Context, paths []string, opts Options) ([]*Result, []error) {
	var (
		results []*Result
		errs    []error
	)
	for _, path := range paths {
		res, err := in.Ingest(ctx, path, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

func (in *Ingester) chunksFor(ctx context.Context, path string, opts Options) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		payload, err := extract.DecodePayloadFile(path, opts.JSONKey)
		if err != nil {
			return nil, err
		}
		// Structured units are pre-chunked; the splitter does not apply.
		return payload.Units, nil
	}

	text, err := extract.ForPath(path, in.ocr).Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	return in.splitter.Split(text), nil
}
