package services

import (
	"sync"

	"github.com/google/uuid"
)

// AssetLocker hands out one mutex per asset so that writes against the same
// asset are serialized while different assets proceed in parallel. Entries
// are reference counted and dropped once nobody holds or waits for them.
type AssetLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*assetLock
}

type assetLock struct {
	mu   sync.Mutex
	refs int
}

func NewAssetLocker() *AssetLocker {
	return &AssetLocker{locks: make(map[uuid.UUID]*assetLock)}
}

// Lock blocks until the asset is free and returns the matching unlock func.
func (l *AssetLocker) Lock(assetID uuid.UUID) func() {
	l.mu.Lock()
	al, ok := l.locks[assetID]
	if !ok {
		al = &assetLock{}
		l.locks[assetID] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()

	return func() {
		al.mu.Unlock()

		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, assetID)
		}
		l.mu.Unlock()
	}
}

func (l *AssetLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
