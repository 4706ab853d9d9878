// Package keyedmutex provides per-key mutual exclusion. It is used to serialize
// ticket creation per user so that two messages arriving back-to-back cannot
// both observe "no open ticket" and create duplicates.
package keyedmutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex hands out a mutex per int64 key. Unlocked keys hold no memory:
// entries are reference counted and removed when the last holder unlocks.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

func New() *KeyedMutex {
	return &KeyedMutex{entries: make(map[int64]*entry)}
}

// Lock acquires the mutex for key, blocking until it is available.
func (m *KeyedMutex) Lock(key int64) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. Unlocking a key that is not held panics,
// matching sync.Mutex semantics.
func (m *KeyedMutex) Unlock(key int64) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		panic("keyedmutex: unlock of unlocked key")
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}
