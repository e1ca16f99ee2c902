package iocache

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCacheStatus writes cache status information as a two-column table.
func WriteCacheStatus(w io.Writer, status schema.CacheStatus) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Property", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := [][]string{
		{"Backend", status.Backend},
		{"Session", status.SessionID},
		{"Connected", strconv.FormatBool(status.Connected)},
	}
	if status.Connected {
		data = append(data,
			[]string{"Total Entries", strconv.Itoa(status.TotalEntries)},
			[]string{"Session Entries", strconv.Itoa(status.SessionEntries)},
		)
		if !status.LastEntryTime.IsZero() {
			data = append(data,
				[]string{"Last Entry", status.LastEntryTime.Format(contract.DateTimeFormat)},
				[]string{"Oldest Entry", status.OldestEntryTime.Format(contract.DateTimeFormat)},
			)
		}
		data = append(data, []string{"Table Size", fmt.Sprintf("%d bytes", status.TableSizeBytes)})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error adding status rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering status table: %w", err)
	}
	return nil
}
