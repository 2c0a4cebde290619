package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"docchat/internal/vectorstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpen_MigrationIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = store.Close()

	// Reopening must not fail on the existing schema.
	store, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	_ = store.Close()
}

func TestStore_PutRejectsEmptyText(t *testing.T) {
	store := newTestStore(t)

	err := store.Put(context.Background(), vectorstore.Record{
		Namespace: "ns", Index: 0, Text: "", Vector: []float32{1},
	})
	if !errors.Is(err, vectorstore.ErrEmptyText) {
		t.Errorf("Put() error = %v, want ErrEmptyText", err)
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []vectorstore.Record{
		{Namespace: "ns1", Index: 0, Text: "first", Vector: []float32{0.1, 0.2}},
		{Namespace: "ns1", Index: 1, Text: "second", Vector: []float32{0.3, 0.4}},
		{Namespace: "ns2", Index: 0, Text: "other", Vector: []float32{0.5, 0.6}},
	}
	for _, rec := range records {
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	got, err := store.GetAll(ctx, "ns1")
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetAll() returned %d records, want 2", len(got))
	}
	for i, rec := range got {
		if rec.Index != i {
			t.Errorf("record %d has index %d, records not ordered by index", i, rec.Index)
		}
	}
	if got[0].Text != "first" || got[1].Text != "second" {
		t.Errorf("texts = %q, %q", got[0].Text, got[1].Text)
	}
	if got[0].Vector[0] != 0.1 || got[0].Vector[1] != 0.2 {
		t.Errorf("vector round trip failed: %v", got[0].Vector)
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := vectorstore.Record{Namespace: "ns", Index: 0, Text: "old", Vector: []float32{1}}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	rec.Text = "new"
	rec.Vector = []float32{2}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	got, err := store.GetAll(ctx, "ns")
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("GetAll() returned %d records, want 1", len(got))
	}
	if got[0].Text != "new" || got[0].Vector[0] != 2 {
		t.Errorf("overwrite not applied: %+v", got[0])
	}
}

func TestStore_Exists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "ns")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Exists() = true for empty namespace")
	}

	if err := store.Put(ctx, vectorstore.Record{Namespace: "ns", Index: 0, Text: "t", Vector: []float32{1}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	exists, err = store.Exists(ctx, "ns")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false after Put")
	}
}

func TestStore_GetAll_EmptyNamespace(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAll(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetAll() returned %d records for unknown namespace, want 0", len(got))
	}
}

func TestStore_GetAllIn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []vectorstore.Record{
		{Namespace: "a", Index: 0, Text: "a0", Vector: []float32{1}},
		{Namespace: "b", Index: 0, Text: "b0", Vector: []float32{2}},
		{Namespace: "c", Index: 0, Text: "c0", Vector: []float32{3}},
	} {
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	got, err := store.GetAllIn(ctx, []string{"a", "c"})
	if err != nil {
		t.Fatalf("GetAllIn() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetAllIn() returned %d records, want 2", len(got))
	}
	if got[0].Namespace != "a" || got[1].Namespace != "c" {
		t.Errorf("namespaces = %q, %q, want a, c", got[0].Namespace, got[1].Namespace)
	}

	// nil namespace list means every namespace.
	all, err := store.GetAllIn(ctx, nil)
	if err != nil {
		t.Fatalf("GetAllIn(nil) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("GetAllIn(nil) returned %d records, want 3", len(all))
	}
}

func TestStore_NamespacesAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Put(ctx, vectorstore.Record{Namespace: "ns", Index: i, Text: "t", Vector: []float32{1}}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	if err := store.Put(ctx, vectorstore.Record{Namespace: "other", Index: 0, Text: "t", Vector: []float32{1}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	names, err := store.Namespaces(ctx)
	if err != nil {
		t.Fatalf("Namespaces() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("Namespaces() returned %d, want 2", len(names))
	}

	if err := store.DeleteNamespace(ctx, "ns"); err != nil {
		t.Fatalf("DeleteNamespace() error = %v", err)
	}
	exists, err := store.Exists(ctx, "ns")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("namespace still exists after DeleteNamespace")
	}
	exists, err = store.Exists(ctx, "other")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("DeleteNamespace removed records from a different namespace")
	}
}
