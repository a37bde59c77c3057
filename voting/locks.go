package voting

import "sync"

// VoteLocks serializes ballot operations per vote so a recompute never
// interleaves with another in-flight mutation of the same vote. Operations
// on different votes proceed independently.
type VoteLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewVoteLocks() *VoteLocks {
	return &VoteLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a vote and returns the matching unlock.
// Entries stay in the map for the lifetime of the process; it grows with the
// number of distinct votes this instance has mutated.
func (l *VoteLocks) Lock(voteID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[voteID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[voteID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
