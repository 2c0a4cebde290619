// Package memory implements vectorstore.Store in process memory. Nothing
// survives the process; it backs tests and throwaway sessions.
package memory

import (
	"context"
	"sort"
	"sync"

	"docchat/internal/vectorstore"
)

// Store keeps chunk records in a map keyed by namespace.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]map[int]vectorstore.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{namespaces: make(map[string]map[int]vectorstore.Record)}
}

// Put writes or overwrites one chunk record.
func (s *Store) Put(_ context.Context, rec vectorstore.Record) error {
	if rec.Text == "" {
		return vectorstore.ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[rec.Namespace]
	if !ok {
		ns = make(map[int]vectorstore.Record)
		s.namespaces[rec.Namespace] = ns
	}
	// Copy the vector so later caller mutations cannot reach the store.
	vec := make([]float32, len(rec.Vector))
	copy(vec, rec.Vector)
	rec.Vector = vec
	ns[rec.Index] = rec
	return nil
}

// Exists reports whether at least one chunk record exists for the namespace.
func (s *Store) Exists(_ context.Context, namespace string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces[namespace]) > 0, nil
}

// GetAll returns all chunks for one namespace, ordered by index.
func (s *Store) GetAll(_ context.Context, namespace string) ([]vectorstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(namespace), nil
}

// GetAllIn returns chunks for the given namespaces, ordered by namespace
// then index. A nil or empty list means every namespace.
func (s *Store) GetAllIn(_ context.Context, namespaces []string) ([]vectorstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(namespaces) == 0 {
		namespaces = make([]string, 0, len(s.namespaces))
		for ns := range s.namespaces {
			namespaces = append(namespaces, ns)
		}
	} else {
		namespaces = dedupe(namespaces)
	}
	sort.Strings(namespaces)

	var records []vectorstore.Record
	for _, ns := range namespaces {
		records = append(records, s.collect(ns)...)
	}
	return records, nil
}

// Namespaces returns every namespace with at least one stored chunk.
func (s *Store) Namespaces(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.namespaces))
	for ns, records := range s.namespaces {
		if len(records) > 0 {
			names = append(names, ns)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteNamespace removes all chunk records under the namespace.
func (s *Store) DeleteNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// collect returns the namespace's records ordered by index. Caller holds
// at least a read lock.
func (s *Store) collect(namespace string) []vectorstore.Record {
	ns := s.namespaces[namespace]
	if len(ns) == 0 {
		return nil
	}

	records := make([]vectorstore.Record, 0, len(ns))
	for _, rec := range ns {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Index < records[j].Index })
	return records
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
