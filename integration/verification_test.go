//go:build integration

// Package integration contains integration tests for folio.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportsFrom decodes the JSON output of folio show.
func reportsFrom(t *testing.T, out string) map[schema.TrackerName]schema.TrackerReport {
	t.Helper()
	var reports []schema.TrackerReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	byName := make(map[schema.TrackerName]schema.TrackerReport, len(reports))
	for _, r := range reports {
		byName[r.Tracker] = r
	}
	return byName
}

// TestShowLive resolves views and judge against a healthy backend.
func TestShowLive(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	api := newBackend(t, &healthy)

	out, err := runFolioCommand(t, nil, "show", "--trackers", "views,judge", "--output", "json", "--api-base", api.URL, "--log-level", "disabled")
	require.NoError(t, err)

	reports := reportsFrom(t, out)
	require.Len(t, reports, 2)

	views := reports[schema.ViewsTracker]
	assert.Equal(t, schema.LiveState, views.State)
	assert.Equal(t, schema.SuccessStatus, views.Status)
	assert.Equal(t, float64(314), views.Snapshot.(map[string]any)["count"])

	judge := reports[schema.JudgeTracker]
	assert.Equal(t, schema.LiveState, judge.State)
	assert.Equal(t, float64(120), judge.Snapshot.(map[string]any)["solved"])
}

// TestShowOfflineDefaults checks that a dead backend yields defaults, not a failure.
func TestShowOfflineDefaults(t *testing.T) {
	var healthy atomic.Bool
	api := newBackend(t, &healthy)

	out, err := runFolioCommand(t, nil, "show", "--trackers", "views,judge", "--output", "json", "--api-base", api.URL, "--log-level", "disabled")
	require.NoError(t, err, "An unreachable backend must not fail the command")

	for name, report := range reportsFrom(t, out) {
		assert.Equal(t, schema.OfflineState, report.State, name)
		assert.True(t, report.Defaulted, name)
		assert.NotEmpty(t, report.Error, name)
	}
}

// TestShowParquetExport writes the reports to a parquet file.
func TestShowParquetExport(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	api := newBackend(t, &healthy)

	outFile := filepath.Join(t.TempDir(), "stats.parquet")
	_, err := runFolioCommand(t, nil, "show", "--trackers", "views", "--output", "parquet", "--output-file", outFile, "--api-base", api.URL)
	require.NoError(t, err)
	assert.FileExists(t, outFile)
}
