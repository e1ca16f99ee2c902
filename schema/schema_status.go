package schema

import "time"

// CacheStatus represents the status of the session cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	SessionID       string    `json:"session_id"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	SessionEntries  int       `json:"session_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// TrackerReport is the flattened result of one tracker resolution, used by the
// JSON, CSV, parquet and MCP outputs.
type TrackerReport struct {
	Tracker   TrackerName `json:"tracker"`
	State     State       `json:"state"`
	Status    Status      `json:"status"`
	Defaulted bool        `json:"defaulted"`
	StoredAt  time.Time   `json:"stored_at"`
	Error     string      `json:"error,omitempty"`
	Snapshot  any         `json:"snapshot"`
}
