package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks docchat/internal/vectorstore Store

import (
	"context"
	"errors"
)

var (
	// ErrEmptyText is returned by Put when a record carries no text.
	ErrEmptyText = errors.New("chunk text must not be empty")
)

// Record is one persisted chunk: the text span, its embedding vector and
// its position within the owning document namespace. Records are keyed by
// "<namespace>:<index>" in every backend.
type Record struct {
	Namespace string
	Index     int
	Text      string
	Vector    []float32
}

// Store persists chunk records under per-document namespaces.
//
// Put overwrites the record with the same (namespace, index) key; it
// rejects empty text but does not validate vector dimensionality, which is
// the caller's responsibility. Reads return records ordered by namespace
// and index. GetAllIn with a nil or empty namespace list returns records
// from every namespace ever ingested.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Exists(ctx context.Context, namespace string) (bool, error)
	GetAll(ctx context.Context, namespace string) ([]Record, error)
	GetAllIn(ctx context.Context, namespaces []string) ([]Record, error)
	Namespaces(ctx context.Context) ([]string, error)
	DeleteNamespace(ctx context.Context, namespace string) error
	Close() error
}
