package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docchat/internal/llm/mocks"
	"docchat/internal/namespace"
	"docchat/internal/splitter"
	"docchat/internal/vectorstore/memory"
	storemocks "docchat/internal/vectorstore/mocks"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestIngestPlainText(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{0.1, 0.2, 0.3}, nil).AnyTimes()

	content := strings.Repeat("All work and no play makes for dull chunks. ", 60)
	path := writeFile(t, "doc.txt", content)

	in := New(store, embedder, nil, false)
	res, err := in.Ingest(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Skipped {
		t.Error("first ingestion should not be skipped")
	}
	if res.ChunkCount < 2 {
		t.Errorf("expected multiple chunks for %d chars, got %d", len(content), res.ChunkCount)
	}

	wantNS := namespace.FromBytes([]byte(content))
	if res.Namespace != wantNS {
		t.Errorf("expected namespace %s, got %s", wantNS, res.Namespace)
	}

	recs, err := store.GetAll(context.Background(), wantNS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != res.ChunkCount {
		t.Errorf("store holds %d records, result reports %d", len(recs), res.ChunkCount)
	}
	for i, rec := range recs {
		if rec.Index != i {
			t.Errorf("record %d has index %d", i, rec.Index)
		}
		if len(rec.Vector) != 3 {
			t.Errorf("record %d has vector of size %d", i, len(rec.Vector))
		}
	}
}

func TestIngestIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)

	content := "A short document that fits in one chunk."
	path := writeFile(t, "doc.txt", content)

	// The first pass is the only time embedding may happen.
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{1, 0}, nil).Times(1)

	in := New(store, embedder, nil, false)
	first, err := in.Ingest(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := in.Ingest(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.Skipped {
		t.Error("re-ingestion of identical content should be skipped")
	}
	if second.ChunkCount != first.ChunkCount {
		t.Errorf("skip reported %d chunks, first run stored %d", second.ChunkCount, first.ChunkCount)
	}
}

func TestIngestSameContentDifferentName(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{1, 0}, nil).Times(1)

	content := "Identical bytes under two filenames."
	pathA := writeFile(t, "a.txt", content)
	pathB := writeFile(t, "b.txt", content)

	in := New(store, embedder, nil, false)
	if _, err := in.Ingest(context.Background(), pathA, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := in.Ingest(context.Background(), pathB, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Skipped {
		t.Error("same content under a different name should be skipped")
	}
}

func TestIngestEmbedFailureWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)

	// Second chunk fails; no record at all may reach the store.
	gomock.InOrder(
		embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return([]float32{1, 0}, nil),
		embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return(nil, errors.New("model unavailable")),
	)

	content := strings.Repeat("Sentences to make at least two chunks for the run. ", 40)
	path := writeFile(t, "doc.txt", content)

	in := New(store, embedder, nil, false)
	if _, err := in.Ingest(context.Background(), path, Options{}); err == nil {
		t.Fatal("expected embedding error")
	}

	ns := namespace.FromBytes([]byte(content))
	exists, err := store.Exists(context.Background(), ns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("failed ingestion must not leave partial records behind")
	}
}

func TestIngestStructuredJSONList(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{1, 0}, nil).Times(3)

	path := writeFile(t, "data.json", `["first unit", "second unit", "third unit"]`)

	in := New(store, embedder, nil, false)
	res, err := in.Ingest(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChunkCount != 3 {
		t.Fatalf("expected 3 units, got %d", res.ChunkCount)
	}

	recs, err := store.GetAll(context.Background(), res.Namespace)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Text != "first unit" {
		t.Errorf("units must be stored verbatim, got %q", recs[0].Text)
	}
}

func TestIngestStructuredJSONWithKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{1, 0}, nil).Times(2)

	path := writeFile(t, "data.json",
		`{"meta": {"v": 1}, "records": ["a", "b"], "extra": ["x"]}`)

	in := New(store, embedder, nil, false)
	res, err := in.Ingest(context.Background(), path, Options{JSONKey: "records"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChunkCount != 2 {
		t.Errorf("expected 2 units, got %d", res.ChunkCount)
	}
}

func TestIngestStructuredJSONAmbiguous(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)

	path := writeFile(t, "data.json", `{"records": ["a"], "extra": ["x"]}`)

	in := New(store, embedder, nil, false)
	_, err := in.Ingest(context.Background(), path, Options{})
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !strings.Contains(err.Error(), "extra") || !strings.Contains(err.Error(), "records") {
		t.Errorf("error should list the available keys, got: %v", err)
	}
}

func TestIngestMissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)

	in := New(store, embedder, nil, false)
	if _, err := in.Ingest(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), Options{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIngestStoreCheckError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storemocks.NewMockStore(ctrl)
	store.EXPECT().Exists(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused"))
	// The existence check fails before any extraction or embedding.
	embedder := mocks.NewMockEmbedder(ctrl)

	path := writeFile(t, "doc.txt", "Content that never gets that far.")

	in := New(store, embedder, nil, false)
	_, err := in.Ingest(context.Background(), path, Options{})
	if err == nil {
		t.Fatal("expected store error")
	}
	if !strings.Contains(err.Error(), "failed to check namespace") {
		t.Errorf("store error should be wrapped, got: %v", err)
	}
}

func TestLoadAllContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{1, 0}, nil).AnyTimes()

	good := writeFile(t, "good.txt", "A document that loads fine.")
	missing := filepath.Join(t.TempDir(), "missing.txt")
	alsoGood := writeFile(t, "also.txt", "Another document that loads fine.")

	in := New(store, embedder, nil, false)
	results, errs := in.LoadAll(context.Background(), []string{good, missing, alsoGood}, Options{})

	if len(results) != 2 {
		t.Errorf("expected 2 successful loads, got %d", len(results))
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 failure, got %d: %v", len(errs), errs)
	}
}

func TestIngestCustomSplitter(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.New()
	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).
		Return([]float32{1, 0}, nil).AnyTimes()

	content := strings.Repeat("Tiny chunks come from a tiny splitter here. ", 10)
	path := writeFile(t, "doc.txt", content)

	in := New(store, embedder, splitter.New(100, 20), false)
	res, err := in.Ingest(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ChunkCount < 4 {
		t.Errorf("expected many small chunks, got %d", res.ChunkCount)
	}
}
