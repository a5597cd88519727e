package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	locks := NewKeyLock()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("scoring", "user_scoring:alice")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyLockDuplicateKeys(t *testing.T) {
	locks := NewKeyLock()

	// Duplicate keys must not self-deadlock.
	unlock := locks.Lock("a", "a", "b", "a")
	unlock()

	unlock = locks.Lock("a", "b")
	unlock()
}

func TestKeyLockOrderIndependent(t *testing.T) {
	locks := NewKeyLock()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("x", "y")
			defer unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locks.Lock("y", "x")
			defer unlock()
		}()
	}
	wg.Wait()
}
