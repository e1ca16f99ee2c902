package contract

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/folio/schema"
)

// Default values for configuration.
const (
	DefaultRepoHost      = "https://api.github.com"
	DefaultAPIBase       = "http://localhost:8000"
	DefaultListenAddr    = ":8000"
	DefaultJudgeUpstream = "https://alfa-leetcode-api.onrender.com"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// Freshness windows per tracker.
const (
	ActivityWindow = time.Hour
	ViewsWindow    = 30 * time.Minute
	JudgeWindow    = 30 * time.Minute
)

// Repository paging limits for the activity fetcher.
const (
	RepoPageSize = 100
	RepoMaxPages = 5
)

// ActiveRepoWindow is how recently a repo must have been updated to count as active.
const ActiveRepoWindow = 30 * 24 * time.Hour

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the trackers.
// This struct remains the "final, validated" config.
type Config struct {
	Username      string
	JudgeUsername string
	RepoHost      string
	APIBase       string

	ActivityWindow time.Duration
	ViewsWindow    time.Duration
	JudgeWindow    time.Duration
	HTTPTimeout    time.Duration

	Trackers []schema.TrackerName

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string

	// Backend proxy settings used by the serve command.
	ListenAddr    string
	CounterURL    string
	CounterToken  string // Please use env var as this is plaintext
	JudgeUpstream string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Username       string `mapstructure:"username"`
	JudgeUsername  string `mapstructure:"judge-username"`
	RepoHost       string `mapstructure:"repo-host"`
	APIBase        string `mapstructure:"api-base"`
	ActivityWindow string `mapstructure:"activity-window"`
	ViewsWindow    string `mapstructure:"views-window"`
	JudgeWindow    string `mapstructure:"judge-window"`
	HTTPTimeout    string `mapstructure:"http-timeout"`
	Trackers       string `mapstructure:"trackers"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	LogLevel       string `mapstructure:"log-level"`
	LogFormat      string `mapstructure:"log-format"`

	// --- Fields from serveCmd.Flags() ---
	Listen        string `mapstructure:"listen"`
	CounterURL    string `mapstructure:"counter-url"`
	CounterToken  string `mapstructure:"counter-token"`
	JudgeUpstream string `mapstructure:"judge-upstream"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Trackers != nil {
		clone.Trackers = make([]schema.TrackerName, len(c.Trackers))
		copy(clone.Trackers, c.Trackers)
	}
	return &clone
}

// WindowFor returns the freshness window configured for a tracker.
func (c *Config) WindowFor(name schema.TrackerName) time.Duration {
	var window, fallback time.Duration
	switch name {
	case schema.ViewsTracker:
		window, fallback = c.ViewsWindow, ViewsWindow
	case schema.JudgeTracker:
		window, fallback = c.JudgeWindow, JudgeWindow
	default:
		window, fallback = c.ActivityWindow, ActivityWindow
	}
	if window <= 0 {
		return fallback
	}
	return window
}

// HasTracker reports whether the tracker is enabled.
func (c *Config) HasTracker(name schema.TrackerName) bool {
	for _, t := range c.Trackers {
		if t == name {
			return true
		}
	}
	return false
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWindows(cfg, input); err != nil {
		return err
	}
	if err := processTrackers(cfg, input); err != nil {
		return err
	}
	if err := processEndpoints(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MemoryBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the session cache backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.MemoryBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be memory, sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}

// validateSimpleInputs processes and validates all non-duration fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Username = strings.TrimSpace(input.Username)
	cfg.JudgeUsername = strings.TrimSpace(input.JudgeUsername)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.CounterToken = input.CounterToken

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 2. Width Validation ---
	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}

	// --- 3. Logging Validation ---
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be console or json", input.LogFormat)
	}

	// --- 4. Backend Validation ---
	return validateBackendConfig(cfg, input)
}

// processWindows parses the freshness windows and the HTTP timeout.
func processWindows(cfg *Config, input *ConfigRawInput) error {
	parse := func(flag, raw string, fallback time.Duration) (time.Duration, error) {
		if raw == "" {
			return fallback, nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid --%s value %q: %w", flag, raw, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("--%s must be positive (received %s)", flag, raw)
		}
		return d, nil
	}

	var err error
	if cfg.ActivityWindow, err = parse("activity-window", input.ActivityWindow, ActivityWindow); err != nil {
		return err
	}
	if cfg.ViewsWindow, err = parse("views-window", input.ViewsWindow, ViewsWindow); err != nil {
		return err
	}
	if cfg.JudgeWindow, err = parse("judge-window", input.JudgeWindow, JudgeWindow); err != nil {
		return err
	}

	// A zero timeout keeps the original behavior of letting a hung request delay its cycle.
	if input.HTTPTimeout == "" || input.HTTPTimeout == "0" {
		cfg.HTTPTimeout = 0
		return nil
	}
	if cfg.HTTPTimeout, err = parse("http-timeout", input.HTTPTimeout, 0); err != nil {
		return err
	}
	return nil
}

// processTrackers resolves the comma-separated tracker selection.
func processTrackers(cfg *Config, input *ConfigRawInput) error {
	cfg.Trackers = nil
	if strings.TrimSpace(input.Trackers) == "" {
		// Without a username the activity tracker has nothing to fetch.
		for _, name := range schema.AllTrackers {
			if name == schema.ActivityTracker && cfg.Username == "" {
				continue
			}
			cfg.Trackers = append(cfg.Trackers, name)
		}
		return nil
	}

	seen := make(map[schema.TrackerName]bool)
	for p := range strings.SplitSeq(input.Trackers, ",") {
		name := schema.TrackerName(strings.ToLower(strings.TrimSpace(p)))
		if name == "" {
			continue
		}
		if _, ok := schema.ValidTrackers[name]; !ok {
			return fmt.Errorf("invalid tracker '%s'. must be activity, views, judge", p)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		cfg.Trackers = append(cfg.Trackers, name)
	}
	if len(cfg.Trackers) == 0 {
		return fmt.Errorf("at least one tracker must be enabled")
	}
	if cfg.HasTracker(schema.ActivityTracker) && cfg.Username == "" {
		return fmt.Errorf("--username is required for the activity tracker")
	}
	return nil
}

// processEndpoints validates every base URL the trackers and proxy talk to.
func processEndpoints(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.RepoHost, err = normalizeBaseURL("repo-host", input.RepoHost, DefaultRepoHost); err != nil {
		return err
	}
	if cfg.APIBase, err = normalizeBaseURL("api-base", input.APIBase, DefaultAPIBase); err != nil {
		return err
	}
	if cfg.JudgeUpstream, err = normalizeBaseURL("judge-upstream", input.JudgeUpstream, DefaultJudgeUpstream); err != nil {
		return err
	}
	if input.CounterURL != "" {
		if cfg.CounterURL, err = normalizeBaseURL("counter-url", input.CounterURL, ""); err != nil {
			return err
		}
	}
	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return nil
}

// normalizeBaseURL checks that raw is an absolute http(s) URL and trims any trailing slash.
func normalizeBaseURL(flag, raw, fallback string) (string, error) {
	if raw == "" {
		raw = fallback
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid --%s value %q: %w", flag, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("--%s must be an http or https URL (received %q)", flag, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("--%s must include a host (received %q)", flag, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// GetCacheDBFilePath returns the path to the SQLite DB file for session storage.
func GetCacheDBFilePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ".folio_session.db"
	}
	return filepath.Join(cacheDir, "folio", "session.db")
}
