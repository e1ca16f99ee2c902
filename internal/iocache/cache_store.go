package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// sessionTable is the name of the table holding session cache rows.
const sessionTable = "session_cache"

// CacheStoreImpl handles session-scoped storage operations using SQL database backends.
// Every row is tagged with the session id, so concurrent sessions sharing one
// database never see each other's entries.
type CacheStoreImpl struct {
	db        *sql.DB
	sessionID string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// openDatabase opens and pings the database for a SQL backend.
func openDatabase(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory for %q: %w", dbPath, err)
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported SQL backend: %s", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}

// NewCacheStore initializes and returns a new session store based on the backend type.
// SQL backends are migrated to the latest schema version before use.
func NewCacheStore(sessionID string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	switch backend {
	case schema.MemoryBackend, "":
		return NewMemoryStore(sessionID), nil
	case schema.NoneBackend:
		// Return a no-op store for disabled caching
		return &CacheStoreImpl{sessionID: sessionID, backend: backend, connStr: connStr}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be memory, sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	if _, err := migrateDatabase(db, backend, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare table %s: %w", sessionTable, err)
	}

	return &CacheStoreImpl{
		db:        db,
		sessionID: sessionID,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// placeholders returns n backend-specific parameter placeholders.
func (ps *CacheStoreImpl) placeholders(n int) []any {
	out := make([]any, n)
	for i := range out {
		if ps.backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// Get retrieves the entry for key in the current session.
func (ps *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ps.backend == schema.NoneBackend || ps.db == nil {
		return nil, 0, 0, contract.ErrCacheMiss
	}

	var value []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE session_id = %s AND cache_key = %s`,
		append([]any{sessionTable}, ps.placeholders(2)...)...)
	row := ps.db.QueryRow(query, ps.sessionID, key)

	if err := row.Scan(&value, &version, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, contract.ErrCacheMiss
		}
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces the entry for key in the current session.
func (ps *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ps.backend == schema.NoneBackend || ps.db == nil {
		return nil
	}

	_, err := ps.db.Exec(ps.getUpsertQuery(), ps.sessionID, key, value, version, timestamp)
	return err
}

// Delete removes the entry for key in the current session. Missing keys are not an error.
func (ps *CacheStoreImpl) Delete(key string) error {
	if ps.backend == schema.NoneBackend || ps.db == nil {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = %s AND cache_key = %s`,
		append([]any{sessionTable}, ps.placeholders(2)...)...)
	_, err := ps.db.Exec(query, ps.sessionID, key)
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ps *CacheStoreImpl) getUpsertQuery() string {
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (session_id, cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, sessionTable)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (session_id, cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (session_id, cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, sessionTable)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (session_id, cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?, ?)`, sessionTable)
	}
}

// Close purges the rows of the current session and closes the DB connection.
// Session data does not outlive the session.
func (ps *CacheStoreImpl) Close() error {
	if ps.db == nil {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = %s`, sessionTable, ps.placeholders(1)[0])
	_, purgeErr := ps.db.Exec(query, ps.sessionID)
	closeErr := ps.db.Close()
	ps.db = nil

	return errors.Join(purgeErr, closeErr)
}

// GetStatus returns status information about the session store.
func (ps *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		SessionID: ps.sessionID,
		Connected: ps.db != nil,
	}

	if ps.backend == schema.NoneBackend || ps.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", sessionTable)
	if err := ps.db.QueryRow(countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	sessionQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE session_id = %s", sessionTable, ps.placeholders(1)[0])
	if err := ps.db.QueryRow(sessionQuery, ps.sessionID).Scan(&status.SessionEntries); err != nil {
		return status, fmt.Errorf("failed to get session entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	// Invalidated entries carry a zero timestamp and are left out of the range.
	rangeQuery := fmt.Sprintf("SELECT COALESCE(MAX(cache_timestamp), 0), COALESCE(MIN(cache_timestamp), 0) FROM %s WHERE cache_timestamp > 0", sessionTable)
	var lastTs, oldestTs int64
	if err := ps.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry time range: %w", err)
	}
	if lastTs > 0 {
		status.LastEntryTime = time.UnixMilli(lastTs)
		status.OldestEntryTime = time.UnixMilli(oldestTs)
	}

	// Fallback rough estimate if the size queries fail
	estimate := int64(status.TotalEntries) * 1000

	switch ps.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ps.db.QueryRow(sizeQuery).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.MySQLBackend:
		status.TableSizeBytes = estimate
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ps.db.QueryRow(sizeQuery, cfg.DBName, sessionTable).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = estimate
		}
	case schema.PostgreSQLBackend:
		if err := ps.db.QueryRow("SELECT pg_total_relation_size($1)", sessionTable).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = estimate
		}
	}

	return status, nil
}
