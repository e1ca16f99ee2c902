package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/iocache"
	"github.com/huangsam/folio/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads the minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	setConfigLocation()
	if err := loadConfig(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be memory, sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on session cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by tracker commands. They never start a session.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the session cache backend",
	Long: `Manage the database that backs the session cache.

Every folio process starts a fresh session and removes its own entries on exit.
A process that is killed can leave its entries behind; these are never read again
but take space until cleared.

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove cached entries of every session
  migrate - Upgrade or roll back the session table schema

Examples:
  # Check a shared MySQL cache
  FOLIO_CACHE_BACKEND=mysql FOLIO_CACHE_DB_CONNECT="..." folio cache status`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached entries of every session",
	Long: `Delete cached entries from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Deletes every row of the session table
For memory/none: Nothing to clear

Examples:
  folio cache clear --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, connection status, entry counts, entry time range
and table size of the session cache.

Examples:
  folio cache status --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to open cache", err)
		}
		status, err := iocache.Manager.GetSessionStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		if err := iocache.WriteCacheStatus(os.Stdout, status); err != nil {
			contract.LogFatal("Failed to print cache status", err)
		}
	},
}

// cacheMigrateCmd runs database migrations for the session table.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage the schema version of the session cache table.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  folio cache migrate --cache-backend postgresql --cache-db-connect "host=... dbname=..."

  # Roll back everything
  folio cache migrate --cache-backend sqlite --target-version 0`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		result, err := iocache.MigrateSessionStore(cfg.CacheBackend, cfg.CacheDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !result.Changed {
			fmt.Printf("Schema already at version %d.\n", result.ToVersion)
			return
		}
		fmt.Printf("Migrated schema from version %d to %d.\n", result.FromVersion, result.ToVersion)
	},
}
