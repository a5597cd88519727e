// utils/keylock.go
package utils

import (
	"sort"
	"sync"
)

// KeyLock serializes operations that touch the same record key. Every ledger
// operation acquires all of its keys up front and holds them for the whole
// operation, so a read-modify-write on a shared record (scoring config,
// user scoring row, stake scope) can never interleave with another writer.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyLock() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

func (l *KeyLock) mutexFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}

// Lock acquires every key in a deterministic order (sorted, deduplicated) to
// avoid lock-order deadlocks between operations sharing keys. The returned
// func releases all of them.
func (l *KeyLock) Lock(keys ...string) (unlock func()) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	ms := make([]*sync.Mutex, 0, len(sorted))
	for i, k := range sorted {
		if i > 0 && k == sorted[i-1] {
			continue
		}
		ms = append(ms, l.mutexFor(k))
	}

	for _, m := range ms {
		m.Lock()
	}
	return func() {
		for i := len(ms) - 1; i >= 0; i-- {
			ms[i].Unlock()
		}
	}
}
