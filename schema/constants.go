package schema

// Custom string types for type safety.
type (
	// TrackerName identifies one of the statistics trackers.
	TrackerName string

	// OutputMode represents the format of the output.
	OutputMode string

	// Status represents the indicator state shown next to a tracker.
	Status string

	// State represents the reconciler state a tracker resolved through.
	State string

	// FrequencyLabel represents the activity band derived from recently updated repos.
	FrequencyLabel string

	// DatabaseBackend represents the database backend for the session cache.
	DatabaseBackend string

	// Region names a display region on the presentation surface.
	Region string
)

// All trackers supported.
const (
	ActivityTracker TrackerName = "activity"
	ViewsTracker    TrackerName = "views"
	JudgeTracker    TrackerName = "judge"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All indicator statuses supported.
const (
	FetchingStatus Status = "fetching"
	SuccessStatus  Status = "success"
	OfflineStatus  Status = "offline"
)

// All reconciler states.
const (
	EmptyState       State = "EMPTY"
	CachedFreshState State = "CACHED_FRESH"
	CachedStaleState State = "CACHED_STALE"
	LoadingState     State = "LOADING"
	LiveState        State = "LIVE"
	OfflineState     State = "OFFLINE"
)

// Activity frequency bands, ordered from most to least active.
const (
	HighFrequency     FrequencyLabel = "HIGH"
	MediumFrequency   FrequencyLabel = "MEDIUM"
	ModerateFrequency FrequencyLabel = "MODERATE"
	CasualFrequency   FrequencyLabel = "CASUAL"
)

// All cache backends supported.
const (
	MemoryBackend     DatabaseBackend = "memory" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Display regions on the presentation surface.
const (
	ActivityStatusRegion Region = "activity-status"
	LanguagesRegion      Region = "languages"
	TopRepoRegion        Region = "top-repo"
	CommitBarRegion      Region = "commit-bar"
	ActivityBarRegion    Region = "activity-bar"
	FrequencyRegion      Region = "frequency"
	LastUpdatedRegion    Region = "last-updated"
	ViewsStatusRegion    Region = "views-status"
	ViewCountRegion      Region = "view-count"
	JudgeStatusRegion    Region = "judge-status"
	JudgeSolvedRegion    Region = "judge-solved"
	JudgeEasyRegion      Region = "judge-easy"
	JudgeMediumRegion    Region = "judge-medium"
	JudgeHardRegion      Region = "judge-hard"
	CountdownRegion      Region = "countdown"
)

// AllTrackers returns a list of all trackers in display order.
var AllTrackers = []TrackerName{ActivityTracker, ViewsTracker, JudgeTracker}

// AllRegions returns every region in display order.
var AllRegions = []Region{
	ActivityStatusRegion,
	LanguagesRegion,
	TopRepoRegion,
	CommitBarRegion,
	ActivityBarRegion,
	FrequencyRegion,
	LastUpdatedRegion,
	ViewsStatusRegion,
	ViewCountRegion,
	JudgeStatusRegion,
	JudgeSolvedRegion,
	JudgeEasyRegion,
	JudgeMediumRegion,
	JudgeHardRegion,
	CountdownRegion,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidTrackers lists all valid trackers.
var ValidTrackers = map[TrackerName]struct{}{
	ActivityTracker: {},
	ViewsTracker:    {},
	JudgeTracker:    {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	MemoryBackend:     {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// StatusRegionFor returns the indicator region owned by a tracker.
func StatusRegionFor(name TrackerName) Region {
	switch name {
	case ViewsTracker:
		return ViewsStatusRegion
	case JudgeTracker:
		return JudgeStatusRegion
	default:
		return ActivityStatusRegion
	}
}

// RegionsFor returns the regions a tracker draws into, status region first.
func RegionsFor(name TrackerName) []Region {
	switch name {
	case ViewsTracker:
		return []Region{ViewsStatusRegion, ViewCountRegion}
	case JudgeTracker:
		return []Region{JudgeStatusRegion, JudgeSolvedRegion, JudgeEasyRegion, JudgeMediumRegion, JudgeHardRegion}
	default:
		return []Region{ActivityStatusRegion, LanguagesRegion, TopRepoRegion, CommitBarRegion, ActivityBarRegion, FrequencyRegion, LastUpdatedRegion}
	}
}
