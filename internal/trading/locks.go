package trading

import "sync"

// positionLocks serializes trades per (user, symbol) position.
// Uses per-position locks instead of a global lock.
type positionLocks struct {
	locks    map[string]*sync.Mutex // position key -> mutex
	mapMutex sync.RWMutex           // protects the map itself
}

func newPositionLocks() *positionLocks {
	return &positionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func positionKey(userID, symbol string) string {
	return userID + ":" + symbol
}

// Lock locks the position for a specific user and symbol.
func (pl *positionLocks) Lock(userID, symbol string) {
	key := positionKey(userID, symbol)

	pl.mapMutex.Lock()
	if pl.locks[key] == nil {
		pl.locks[key] = &sync.Mutex{}
	}
	mu := pl.locks[key]
	pl.mapMutex.Unlock()

	mu.Lock()
}

// Unlock unlocks the position for a specific user and symbol.
func (pl *positionLocks) Unlock(userID, symbol string) {
	pl.mapMutex.RLock()
	mu := pl.locks[positionKey(userID, symbol)]
	pl.mapMutex.RUnlock()

	if mu != nil {
		mu.Unlock()
	}
}
