// Package parquet exports tracker snapshots to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/schema"
	"github.com/parquet-go/parquet-go"
)

// TrackerRecord is one tracker resolution flattened into a Parquet row.
// Tracker-specific columns are null for the other trackers.
type TrackerRecord struct {
	// Tracker is the tracker name (activity, views, judge)
	Tracker string `parquet:"tracker,snappy"`

	// State is the reconciler state the resolution ended in
	State string `parquet:"state,snappy"`

	// Status is the indicator status (fetching, success, offline)
	Status string `parquet:"status,snappy"`

	// Defaulted is true when the built-in default snapshot was used
	Defaulted bool `parquet:"defaulted,snappy"`

	// StoredAt is when the presented data was cached (nullable for defaults)
	StoredAt *time.Time `parquet:"stored_at,optional,snappy"`

	// ExportedAt is when the record was written
	ExportedAt time.Time `parquet:"exported_at,snappy"`

	// Error is the fetch failure that caused a fallback (nullable)
	Error *string `parquet:"error,optional,snappy"`

	// SnapshotJSON is the full snapshot as JSON
	SnapshotJSON string `parquet:"snapshot_json,snappy"`

	ViewCount      *int64   `parquet:"view_count,optional,snappy"`
	JudgeSolved    *int32   `parquet:"judge_solved,optional,snappy"`
	JudgeEasy      *int32   `parquet:"judge_easy,optional,snappy"`
	JudgeMedium    *int32   `parquet:"judge_medium,optional,snappy"`
	JudgeHard      *int32   `parquet:"judge_hard,optional,snappy"`
	TopRepo        *string  `parquet:"top_repo,optional,snappy"`
	ActivityRatio  *float64 `parquet:"activity_ratio,optional,snappy"`
	FrequencyLabel *string  `parquet:"frequency_label,optional,snappy"`
	CommitEstimate *int32   `parquet:"commit_estimate,optional,snappy"`
}

// WriteTrackerRecordsParquet writes a slice of TrackerRecord structs to a Parquet file.
func WriteTrackerRecordsParquet(data []TrackerRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the TrackerRecord struct tags
	writer := parquet.NewGenericWriter[TrackerRecord](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteReports converts reports and writes them to outputPath.
func WriteReports(reports []schema.TrackerReport, outputPath string) error {
	records, err := ConvertTrackerReports(reports, time.Now())
	if err != nil {
		return err
	}
	return WriteTrackerRecordsParquet(records, outputPath)
}

// ConvertTrackerReports converts schema.TrackerReport to TrackerRecord for Parquet export.
func ConvertTrackerReports(reports []schema.TrackerReport, exportedAt time.Time) ([]TrackerRecord, error) {
	result := make([]TrackerRecord, len(reports))
	for i, report := range reports {
		snapshotJSON, err := json.Marshal(report.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s snapshot: %w", report.Tracker, err)
		}

		record := TrackerRecord{
			Tracker:      string(report.Tracker),
			State:        string(report.State),
			Status:       string(report.Status),
			Defaulted:    report.Defaulted,
			ExportedAt:   exportedAt,
			SnapshotJSON: string(snapshotJSON),
		}
		if !report.StoredAt.IsZero() {
			storedAt := report.StoredAt
			record.StoredAt = &storedAt
		}
		if report.Error != "" {
			msg := report.Error
			record.Error = &msg
		}

		switch s := report.Snapshot.(type) {
		case schema.ViewSnapshot:
			record.ViewCount = ptr(int64(s.Count))
		case schema.JudgeSnapshot:
			record.JudgeSolved = ptr(int32(s.Solved))
			record.JudgeEasy = ptr(int32(s.Easy))
			record.JudgeMedium = ptr(int32(s.Medium))
			record.JudgeHard = ptr(int32(s.Hard))
		case schema.ActivitySnapshot:
			record.TopRepo = ptr(s.TopRepo.Name)
			record.ActivityRatio = ptr(s.FrequencyStats.Ratio)
			record.FrequencyLabel = ptr(string(s.FrequencyStats.Label))
			record.CommitEstimate = ptr(int32(s.CommitStats.Estimate))
		}
		result[i] = record
	}
	return result, nil
}

func ptr[T any](v T) *T { return &v }
