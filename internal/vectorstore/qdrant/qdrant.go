// Package qdrant implements vectorstore.Store on a Qdrant collection.
//
// Records live as points whose payload carries namespace, chunk_index and
// text; similarity scoring still happens client-side over bulk reads, the
// same as every other backend, so all backends rank identically.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"docchat/internal/namespace"
	"docchat/internal/vectorstore"
)

const scrollPageSize = 256

// Store persists chunk records in one Qdrant collection.
type Store struct {
	client     *qdrant.Client
	collection string

	mu      sync.Mutex
	created bool
}

// Open connects to Qdrant. urlStr is the HTTP URL ("http://host:6333");
// the gRPC port is derived from it the way the HTTP and gRPC listeners are
// conventionally paired (gRPC = HTTP port + 1).
func Open(urlStr, collection string) (*Store, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &Store{client: client, collection: collection}, nil
}

// pointID derives a deterministic UUID for one record key, so re-ingesting
// the same document upserts the same points instead of accumulating
// duplicates.
func pointID(ns string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("docchat://"+namespace.Key(ns, index))).String()
}

// ensureCollection creates the collection on first write, sized to the
// first vector seen.
func (s *Store) ensureCollection(ctx context.Context, vectorSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}
	s.created = true
	return nil
}

// Put writes or overwrites one chunk record.
func (s *Store) Put(ctx context.Context, rec vectorstore.Record) error {
	if rec.Text == "" {
		return vectorstore.ErrEmptyText
	}
	if err := s.ensureCollection(ctx, len(rec.Vector)); err != nil {
		return err
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(rec.Namespace, rec.Index)),
		Vectors: qdrant.NewVectors(rec.Vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			"namespace":   rec.Namespace,
			"chunk_index": rec.Index,
			"text":        rec.Text,
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Exists reports whether at least one chunk record exists for the namespace.
func (s *Store) Exists(ctx context.Context, ns string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return false, nil
	}

	exact := true
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         namespaceFilter([]string{ns}),
		Exact:          &exact,
	})
	if err != nil {
		return false, fmt.Errorf("failed to count points: %w", err)
	}
	return count > 0, nil
}

// GetAll returns all chunks for one namespace, ordered by index.
func (s *Store) GetAll(ctx context.Context, ns string) ([]vectorstore.Record, error) {
	return s.GetAllIn(ctx, []string{ns})
}

// GetAllIn returns chunks for the given namespaces, ordered by namespace
// then index. A nil or empty list means every namespace.
func (s *Store) GetAllIn(ctx context.Context, namespaces []string) ([]vectorstore.Record, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil, nil
	}

	records, err := s.scroll(ctx, namespaceFilter(namespaces), true)
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Namespace != records[j].Namespace {
			return records[i].Namespace < records[j].Namespace
		}
		return records[i].Index < records[j].Index
	})
	return records, nil
}

// Namespaces returns every namespace with at least one stored chunk.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil, nil
	}

	records, err := s.scroll(ctx, nil, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for _, rec := range records {
		if _, ok := seen[rec.Namespace]; ok {
			continue
		}
		seen[rec.Namespace] = struct{}{}
		names = append(names, rec.Namespace)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteNamespace removes all chunk records under the namespace.
func (s *Store) DeleteNamespace(ctx context.Context, ns string) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil
	}

	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(namespaceFilter([]string{ns})),
	})
	if err != nil {
		return fmt.Errorf("failed to delete namespace: %w", err)
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// scroll pages through the collection. Qdrant's scroll offset is the id of
// the next page's first point; the last id of the current page is used
// instead, so a page boundary point can repeat and is deduplicated by key.
func (s *Store) scroll(ctx context.Context, filter *qdrant.Filter, withVectors bool) ([]vectorstore.Record, error) {
	limit := uint32(scrollPageSize)
	req := &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(withVectors),
	}

	seen := make(map[string]struct{})
	var records []vectorstore.Record
	for {
		points, err := s.client.Scroll(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}
		if len(points) == 0 {
			break
		}

		for _, point := range points {
			rec, err := recordFromPoint(point, withVectors)
			if err != nil {
				return nil, err
			}
			key := namespace.Key(rec.Namespace, rec.Index)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, rec)
		}

		if uint32(len(points)) < limit {
			break
		}
		req.Offset = points[len(points)-1].Id
	}
	return records, nil
}

func recordFromPoint(point *qdrant.RetrievedPoint, withVector bool) (vectorstore.Record, error) {
	payload := point.Payload
	if payload == nil {
		return vectorstore.Record{}, fmt.Errorf("point %s has no payload", point.Id)
	}

	rec := vectorstore.Record{
		Namespace: payload["namespace"].GetStringValue(),
		Index:     int(payload["chunk_index"].GetIntegerValue()),
		Text:      payload["text"].GetStringValue(),
	}
	if rec.Namespace == "" {
		return vectorstore.Record{}, fmt.Errorf("point %s has no namespace payload", point.Id)
	}

	if withVector {
		vectors := point.Vectors.GetVector()
		if vectors == nil {
			return vectorstore.Record{}, fmt.Errorf("point %s has no vector", point.Id)
		}
		rec.Vector = vectors.Data
	}
	return rec, nil
}

// namespaceFilter builds the payload filter for the given namespaces; nil
// or empty means no filter (every namespace).
func namespaceFilter(namespaces []string) *qdrant.Filter {
	if len(namespaces) == 0 {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeywords("namespace", namespaces...),
		},
	}
}
