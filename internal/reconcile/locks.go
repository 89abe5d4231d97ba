package reconcile

import "sync"

// keyMutex serializes reconciliation per (game, draw ref) key. The merge
// decision reads the current best contributor before deciding whether to
// replace it, so the read-modify-write for one key must not interleave.
// Different keys proceed fully in parallel.
type keyMutex struct {
	mu   sync.Mutex
	held map[Key]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{held: make(map[Key]*keyLock)}
}

// lock acquires the per-key lock and returns its release function. Entries
// are reference-counted so the map does not grow with dead keys.
func (k *keyMutex) lock(key Key) func() {
	k.mu.Lock()
	entry := k.held[key]
	if entry == nil {
		entry = &keyLock{}
		k.held[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.held, key)
		}
		k.mu.Unlock()
	}
}
