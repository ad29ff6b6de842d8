package strcache

import "sync"

// Synced wraps Cache with a mutex so it can be shared across goroutines.
// The core parser does not use this variant — it runs under its own
// mutex (see pkg/parser) — but external collaborators that want a
// process-wide signature cache can.
type Synced struct {
	mu    sync.Mutex
	cache *Cache
}

// NewSynced returns a thread-safe cache, pre-seeded like New.
func NewSynced() *Synced {
	return &Synced{cache: New()}
}

func (s *Synced) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
}

func (s *Synced) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Reset()
}

func (s *Synced) FindID(value string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.FindID(value)
}

func (s *Synced) FindValue(id uint32) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.FindValue(id)
}

func (s *Synced) FindOrAdd(value string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.FindOrAdd(value)
}

func (s *Synced) DeleteValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.DeleteValue(value)
}

func (s *Synced) DeleteID(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.DeleteID(id)
}

func (s *Synced) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
