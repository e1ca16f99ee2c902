// Package iocache is the session-scoped cache store behind every tracker.
package iocache

import (
	"sync"

	"github.com/huangsam/folio/internal/contract"
)

// CacheStoreManager owns the session store for the running process.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	session      contract.CacheStore
	sessionID    string
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSessionStore returns the session CacheStore.
func (mgr *CacheStoreManager) GetSessionStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.session
}

// SessionID returns the id the session rows are tagged with.
func (mgr *CacheStoreManager) SessionID() string {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.sessionID
}
