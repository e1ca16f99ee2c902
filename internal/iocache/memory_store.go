package iocache

import (
	"sync"
	"time"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

type memoryEntry struct {
	value     []byte
	version   int
	timestamp int64
}

// MemoryStore is a process-local session store. It is the default backend
// since a session cache does not need to outlive the process.
type MemoryStore struct {
	mu        sync.RWMutex
	sessionID string
	entries   map[string]memoryEntry
	closed    bool
}

var _ contract.CacheStore = &MemoryStore{} // Compile-time check

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(sessionID string) *MemoryStore {
	return &MemoryStore{sessionID: sessionID, entries: map[string]memoryEntry{}}
}

// Get retrieves the entry for key.
func (ms *MemoryStore) Get(key string) ([]byte, int, int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entry, ok := ms.entries[key]
	if !ok {
		return nil, 0, 0, contract.ErrCacheMiss
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, entry.version, entry.timestamp, nil
}

// Set inserts or replaces the entry for key.
func (ms *MemoryStore) Set(key string, value []byte, version int, timestamp int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	ms.entries[key] = memoryEntry{value: stored, version: version, timestamp: timestamp}
	return nil
}

// Delete removes the entry for key.
func (ms *MemoryStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
	return nil
}

// GetStatus returns status information about the store.
func (ms *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	status := schema.CacheStatus{
		Backend:        string(schema.MemoryBackend),
		SessionID:      ms.sessionID,
		Connected:      !ms.closed,
		TotalEntries:   len(ms.entries),
		SessionEntries: len(ms.entries),
	}

	var last, oldest int64
	for _, entry := range ms.entries {
		if entry.timestamp <= 0 {
			continue
		}
		status.TableSizeBytes += int64(len(entry.value))
		if entry.timestamp > last {
			last = entry.timestamp
		}
		if oldest == 0 || entry.timestamp < oldest {
			oldest = entry.timestamp
		}
	}
	if last > 0 {
		status.LastEntryTime = time.UnixMilli(last)
		status.OldestEntryTime = time.UnixMilli(oldest)
	}
	return status, nil
}

// Close drops every entry. Later writes are ignored.
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries = map[string]memoryEntry{}
	ms.closed = true
	return nil
}
