package service

import "sync"

// scopeLocks grants at most one in-flight generation run per scope id.
// Acquisition never blocks; a second caller for the same scope is refused
// so it can fail fast instead of queueing behind a long search.
type scopeLocks struct {
	mu     sync.Mutex
	active map[string]bool
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{active: make(map[string]bool)}
}

// TryAcquire claims the scope, reporting false when already held.
func (l *scopeLocks) TryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active[id] {
		return false
	}
	l.active[id] = true
	return true
}

// Release frees the scope for the next run.
func (l *scopeLocks) Release(id string) {
	l.mu.Lock()
	delete(l.active, id)
	l.mu.Unlock()
}
