// Package notice keeps one-shot messages for a worker until they are read,
// the way a web session carries flash messages across a redirect.
package notice

import (
	"sync"
	"time"
)

// Level classifies a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a human-readable message addressed to one worker.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// entry stores a notice and its absolute expiration timestamp.
type entry struct {
	notice    Notice
	expiresAt time.Time // zero means no expiration
}

// Store holds pending notices per worker id. It is safe for concurrent use.
// Expired notices are dropped lazily on Drain or via PurgeExpired.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[uint][]entry
}

// NewStore constructs a Store; ttl <= 0 keeps notices until drained.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		items: make(map[uint][]entry),
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Push queues a notice for the worker.
func (s *Store) Push(workerID uint, level Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exp time.Time
	if s.ttl > 0 {
		exp = now().Add(s.ttl)
	}
	s.items[workerID] = append(s.items[workerID], entry{
		notice:    Notice{Level: level, Message: message},
		expiresAt: exp,
	})
}

// Drain returns the worker's unexpired notices in push order and forgets them.
func (s *Store) Drain(workerID uint) []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.items[workerID]
	delete(s.items, workerID)

	out := make([]Notice, 0, len(entries))
	ts := now()
	for _, e := range entries {
		if !e.expiresAt.IsZero() && ts.After(e.expiresAt) {
			continue
		}
		out = append(out, e.notice)
	}
	return out
}

// pending counts the worker's unexpired notices without consuming them.
func (s *Store) pending(workerID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	ts := now()
	for _, e := range s.items[workerID] {
		if e.expiresAt.IsZero() || !ts.After(e.expiresAt) {
			count++
		}
	}
	return count
}

// PurgeExpired removes expired notices for every worker.
func (s *Store) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	for id, entries := range s.items {
		kept := entries[:0]
		for _, e := range entries {
			if e.expiresAt.IsZero() || !ts.After(e.expiresAt) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(s.items, id)
			continue
		}
		s.items[id] = kept
	}
}
