package iocache

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the behavior every backend must share.
func storeContract(t *testing.T, store contract.CacheStore) {
	t.Helper()

	_, _, _, err := store.Get("views")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	require.NoError(t, store.Set("views", []byte(`{"count":42}`), 1, 1700000000000))
	value, version, ts, err := store.Get("views")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":42}`, string(value))
	assert.Equal(t, 1, version)
	assert.Equal(t, int64(1700000000000), ts)

	// Overwrite in place, including the expired marker
	require.NoError(t, store.Set("views", []byte(`{"count":43}`), 1, 0))
	value, _, ts, err = store.Get("views")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":43}`, string(value))
	assert.Equal(t, int64(0), ts)

	require.NoError(t, store.Delete("views"))
	_, _, _, err = store.Get("views")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete("never-set"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("session-a")
	storeContract(t, store)

	t.Run("returned values are copies", func(t *testing.T) {
		require.NoError(t, store.Set("k", []byte("abc"), 1, 10))
		value, _, _, err := store.Get("k")
		require.NoError(t, err)
		value[0] = 'z'
		again, _, _, _ := store.Get("k")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("status", func(t *testing.T) {
		require.NoError(t, store.Set("old", []byte("1"), 1, 1000))
		require.NoError(t, store.Set("expired", []byte("1"), 1, 0))
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "memory", status.Backend)
		assert.Equal(t, "session-a", status.SessionID)
		assert.True(t, status.Connected)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, int64(10), status.OldestEntryTime.UnixMilli())
		assert.Equal(t, int64(1000), status.LastEntryTime.UnixMilli())
	})

	t.Run("close drops entries", func(t *testing.T) {
		require.NoError(t, store.Close())
		_, _, _, err := store.Get("k")
		assert.ErrorIs(t, err, contract.ErrCacheMiss)
		require.NoError(t, store.Set("k", []byte("x"), 1, 1))
		_, _, _, err = store.Get("k")
		assert.ErrorIs(t, err, contract.ErrCacheMiss)
	})
}

func TestNoneStore(t *testing.T) {
	store, err := NewCacheStore("session-a", schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("views", []byte("1"), 1, 1))
	_, _, _, err = store.Get("views")
	assert.ErrorIs(t, err, contract.ErrCacheMiss)
	assert.NoError(t, store.Delete("views"))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreUnsupported(t *testing.T) {
	_, err := NewCacheStore("session-a", schema.DatabaseBackend("redis"), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cache backend")
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := NewCacheStore("session-a", schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	storeContract(t, store)

	t.Run("sessions are isolated", func(t *testing.T) {
		other, err := NewCacheStore("session-b", schema.SQLiteBackend, dbPath)
		require.NoError(t, err)

		require.NoError(t, store.Set("leetcode_data", []byte(`{"solved":1}`), 1, 5000))
		_, _, _, err = other.Get("leetcode_data")
		assert.ErrorIs(t, err, contract.ErrCacheMiss)

		require.NoError(t, other.Set("leetcode_data", []byte(`{"solved":2}`), 1, 6000))
		value, _, _, err := store.Get("leetcode_data")
		require.NoError(t, err)
		assert.JSONEq(t, `{"solved":1}`, string(value))

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, 1, status.SessionEntries)
		assert.Equal(t, int64(6000), status.LastEntryTime.UnixMilli())
		assert.Equal(t, int64(5000), status.OldestEntryTime.UnixMilli())

		require.NoError(t, other.Close())
	})

	t.Run("close purges the session", func(t *testing.T) {
		require.NoError(t, store.Close())

		db, err := sql.Open("sqlite", dbPath)
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM session_cache").Scan(&count))
		assert.Zero(t, count)
	})
}

func TestMigrateSessionStore(t *testing.T) {
	t.Run("unsupported backends", func(t *testing.T) {
		for _, backend := range []schema.DatabaseBackend{schema.NoneBackend, schema.MemoryBackend} {
			_, err := MigrateSessionStore(backend, "", -1)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "migrations are not supported")
		}
	})

	t.Run("sqlite up and down", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "migrate.db")

		result, err := MigrateSessionStore(schema.SQLiteBackend, dbPath, -1)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, uint(0), result.FromVersion)
		assert.Equal(t, uint(1), result.ToVersion)

		result, err = MigrateSessionStore(schema.SQLiteBackend, dbPath, -1)
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, uint(1), result.ToVersion)

		result, err = MigrateSessionStore(schema.SQLiteBackend, dbPath, 0)
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, uint(0), result.ToVersion)

		result, err = MigrateSessionStore(schema.SQLiteBackend, dbPath, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), result.ToVersion)
	})
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "clear.db")
		store, err := NewCacheStore("session-a", schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Set("views", []byte("1"), 1, 1))
		require.NoError(t, store.Close())

		assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath))
		assert.NoFileExists(t, dbPath)

		// Clearing twice is fine
		assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath))
	})

	t.Run("memory and none are no-ops", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.MemoryBackend, ""))
		assert.NoError(t, ClearCache(schema.NoneBackend, ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.DatabaseBackend("redis"), ""))
	})
}

func TestInitStores(t *testing.T) {
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test

	require.NoError(t, InitStores(schema.MemoryBackend, ""))
	require.NoError(t, InitStores(schema.MemoryBackend, "")) // idempotent

	store := Manager.GetSessionStore()
	require.NotNil(t, store)
	assert.NotEmpty(t, Manager.SessionID())

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, Manager.SessionID(), status.SessionID)

	CloseCaching()
	CloseCaching() // safe to repeat
}

func TestWriteCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	store := NewMemoryStore("session-xyz")
	require.NoError(t, store.Set("views", []byte("1"), 1, 1700000000000))
	status, err := store.GetStatus()
	require.NoError(t, err)

	require.NoError(t, WriteCacheStatus(&buf, status))
	out := buf.String()
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "session-xyz")
	assert.Contains(t, out, "Session Entries")
	assert.Contains(t, out, "Last Entry")

	buf.Reset()
	require.NoError(t, WriteCacheStatus(&buf, schema.CacheStatus{Backend: "none"}))
	assert.NotContains(t, buf.String(), "Total Entries")
}
