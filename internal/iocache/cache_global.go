package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// InitStores starts a new session and opens its store on the given backend.
// Each process gets a fresh session id, so entries never carry over between runs.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		sessionID := uuid.NewString()
		store, err := NewCacheStore(sessionID, backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize session caching: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.session = store
		Manager.sessionID = sessionID
	})

	return initErr
}

// CloseCaching ends the session. It should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.session != nil {
			if err := Manager.session.Close(); err != nil {
				contract.LogWarn("Failed to close session store", err)
			}
		}
	})
}

// ClearCache removes cached entries of every session for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it deletes all rows, which covers leftovers of
// sessions that never shut down cleanly.
// For the memory and none backends, there is nothing to clear.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = GetDBFilePath()
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTable(backend, connStr)

	case schema.MemoryBackend, schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and deletes every session row.
func clearSQLTable(backend schema.DatabaseBackend, connStr string) error {
	db, err := openDatabase(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := migrateDatabase(db, backend, -1); err != nil {
		return fmt.Errorf("failed to prepare table %s: %w", sessionTable, err)
	}

	if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", sessionTable)); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", sessionTable, err)
	}
	return nil
}
