package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/internal/parquet"
	"github.com/huangsam/folio/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// reportsCSVHeader lists the CSV columns for tracker reports.
var reportsCSVHeader = []string{"tracker", "state", "status", "defaulted", "stored_at", "error", "summary", "snapshot"}

// WriteReports writes one-shot tracker reports in the configured output mode.
func WriteReports(reports []schema.TrackerReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, reports)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsCSV(w, reports)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteReports(reports, cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsTable(w, reports, cfg)
		}, "Wrote table")
	}
}

// writeReportsCSV writes one row per tracker with the snapshot inlined as JSON.
func writeReportsCSV(w io.Writer, reports []schema.TrackerReport) error {
	return writeCSVWithHeader(w, reportsCSVHeader, func(cw *csv.Writer) error {
		for _, r := range reports {
			snapshot, err := json.Marshal(r.Snapshot)
			if err != nil {
				return fmt.Errorf("failed to encode %s snapshot: %w", r.Tracker, err)
			}
			row := []string{
				string(r.Tracker),
				string(r.State),
				string(r.Status),
				strconv.FormatBool(r.Defaulted),
				formatStoredAt(r),
				r.Error,
				SummarizeSnapshot(r.Snapshot, r.Defaulted),
				string(snapshot),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeReportsTable renders reports as a human-readable table.
func writeReportsTable(w io.Writer, reports []schema.TrackerReport, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Tracker", "State", "Status", "Stored", "Summary"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignLeft
	})

	maxWidth := GetMaxValueWidth(cfg)
	data := make([][]string, 0, len(reports))
	for _, r := range reports {
		status := contract.GetPlainStatus(r.Status)
		if cfg.UseColors {
			status = contract.GetColorStatus(r.Status)
		}
		data = append(data, []string{
			string(r.Tracker),
			string(r.State),
			status,
			formatStoredAt(r),
			contract.TruncateText(SummarizeSnapshot(r.Snapshot, r.Defaulted), maxWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error adding table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering table: %w", err)
	}
	return nil
}

// SummarizeSnapshot renders a one-line summary of any tracker snapshot.
func SummarizeSnapshot(snapshot any, defaulted bool) string {
	switch s := snapshot.(type) {
	case schema.ActivitySnapshot:
		return fmt.Sprintf("%s; top %s; ~%d commits; %s",
			FormatLanguages(s.Languages), s.TopRepo.Name, s.CommitStats.Estimate, s.FrequencyStats.Label)
	case schema.ViewSnapshot:
		if defaulted {
			return viewsPlaceholder + " views"
		}
		return fmt.Sprintf("%d views", s.Count)
	case schema.JudgeSnapshot:
		return fmt.Sprintf("%d solved (easy %d, medium %d, hard %d)", s.Solved, s.Easy, s.Medium, s.Hard)
	default:
		return ""
	}
}

func formatStoredAt(r schema.TrackerReport) string {
	if r.StoredAt.IsZero() {
		return ""
	}
	return r.StoredAt.UTC().Format(contract.DateTimeFormat)
}
