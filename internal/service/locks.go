package service

import "sync"

// itemLocks serializes booking mutations per item id so the overlap
// check and the write behave as one step. Unrelated items proceed in
// parallel. Mutexes are created lazily and never evicted; the set of
// item ids is small relative to request volume.
type itemLocks struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// lock acquires the guard for an item and returns its release func.
func (l *itemLocks) lock(itemID int64) func() {
	v, _ := l.locks.LoadOrStore(itemID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
