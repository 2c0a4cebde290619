// Package session tracks which document namespaces have been loaded during
// one interactive conversation, so retrieval can be scoped to just those.
package session

// Session is the set of namespaces loaded so far, in load order. It is not
// persisted; a new conversation starts empty regardless of what the store
// holds. Not safe for concurrent use.
type Session struct {
	order []string
	seen  map[string]struct{}
}

// New creates an empty session.
func New() *Session {
	return &Session{seen: make(map[string]struct{})}
}

// Add records a loaded namespace. Re-adding an already-loaded namespace is
// a no-op, matching idempotent re-ingestion.
func (s *Session) Add(namespace string) {
	if _, ok := s.seen[namespace]; ok {
		return
	}
	s.seen[namespace] = struct{}{}
	s.order = append(s.order, namespace)
}

// Namespaces returns the loaded namespaces in the order they were first
// added. The returned slice is a copy.
func (s *Session) Namespaces() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Contains reports whether the namespace has been loaded this session.
func (s *Session) Contains(namespace string) bool {
	_, ok := s.seen[namespace]
	return ok
}

// Len returns the number of loaded namespaces.
func (s *Session) Len() int {
	return len(s.order)
}
