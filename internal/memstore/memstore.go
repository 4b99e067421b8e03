// Package memstore provides in-memory repository implementations backing the
// server when no database is configured. All stores are safe for concurrent
// use; per-user aggregates serialize their mutations on a keyed mutex.
package memstore

import "sync"

// keyedMutex hands out one mutex per key so writers to different keys do not
// contend while writers to the same key serialize.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m
}
