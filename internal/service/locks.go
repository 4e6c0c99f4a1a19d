package service

import "sync"

// assetLocks serializes ledger mutations per asset. Reads and simulations do
// not take the lock; commits and edits do, so a replay never observes a
// half-applied mutation on the same asset.
type assetLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAssetLocks() *assetLocks {
	return &assetLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for an asset, creating it on first use. The
// returned function releases it.
func (l *assetLocks) Lock(assetID string) func() {
	l.mu.Lock()
	m, ok := l.locks[assetID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[assetID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
