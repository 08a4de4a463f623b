package scheduling

import (
	"sync"
	"time"
)

// slotLocks serializes conflict-check-then-write sequences for a single
// (car, calendar day) pair. The conflict query and the subsequent insert are
// not atomic at the store level, so concurrent writers within this process
// must not interleave between them. Writers in other processes are not
// covered.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

func slotKey(carID string, day time.Time) string {
	return carID + "@" + day.UTC().Format("2006-01-02")
}

// acquire locks the (car, day) pair and returns its release function
func (s *slotLocks) acquire(carID string, day time.Time) func() {
	key := slotKey(carID, day)

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &slotLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}
