package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Store accumulates relay usage for the lifetime of the process. All methods
// are safe for concurrent use.
//
// Increments for a known host only take the read lock; the write lock is held
// just long enough to insert a host seen for the first time.
type Store struct {
	totalBytes atomic.Uint64

	mu     sync.RWMutex
	visits map[string]*atomic.Uint64
}

func NewStore() *Store {
	return &Store{visits: make(map[string]*atomic.Uint64)}
}

// RecordVisit counts one request to host.
func (s *Store) RecordVisit(host string) {
	s.mu.RLock()
	c, ok := s.visits[host]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		c, ok = s.visits[host]
		if !ok {
			c = new(atomic.Uint64)
			s.visits[host] = c
		}
		s.mu.Unlock()
	}

	c.Add(1)
}

// AddBytes adds the size of one fully read upstream response body.
func (s *Store) AddBytes(n uint64) {
	s.totalBytes.Add(n)
}

func (s *Store) TotalBytes() uint64 {
	return s.totalBytes.Load()
}

// Visits returns the current count for host.
func (s *Store) Visits(host string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.visits[host]; ok {
		return c.Load()
	}
	return 0
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	visits := make(map[string]uint64, len(s.visits))
	for host, c := range s.visits {
		visits[host] = c.Load()
	}
	s.mu.RUnlock()

	return Snapshot{
		TotalBytes: s.totalBytes.Load(),
		Visits:     visits,
		TakenAt:    time.Now(),
	}
}
