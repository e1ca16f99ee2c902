// Package outwriter has the presentation surfaces and the report writers.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/huangsam/folio/internal/contract"
	"github.com/huangsam/folio/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// Terminal renders a RegionSurface as a two-column table.
type Terminal struct {
	surface *RegionSurface
	cfg     *contract.Config
	out     io.Writer
	redraw  bool

	mu sync.Mutex
}

// NewTerminal creates a renderer for surface. When out is an interactive terminal,
// each render redraws the screen in place.
func NewTerminal(surface *RegionSurface, cfg *contract.Config, out io.Writer) *Terminal {
	redraw := false
	if f, ok := out.(*os.File); ok {
		redraw = term.IsTerminal(int(f.Fd()))
	}
	return &Terminal{surface: surface, cfg: cfg, out: out, redraw: redraw}
}

// Presenters returns presenters that draw into the terminal's surface.
func (t *Terminal) Presenters() (*ActivityPresenter, *ViewsPresenter, *JudgePresenter, *CountdownPresenter) {
	return &ActivityPresenter{Surface: t.surface, BarWidth: GetBarWidth(t.cfg)},
		&ViewsPresenter{Surface: t.surface},
		&JudgePresenter{Surface: t.surface},
		&CountdownPresenter{Surface: t.surface}
}

// Render writes the current surface. Renders are serialized.
func (t *Terminal) Render() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.redraw {
		if _, err := io.WriteString(t.out, clearScreen); err != nil {
			return err
		}
	}
	return writeSurfaceTable(t.out, t.surface.Values(), t.cfg)
}

// writeSurfaceTable generates and writes the human-readable region table.
func writeSurfaceTable(w io.Writer, values []RegionValue, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Region", "Value"})
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignLeft
	})

	maxWidth := GetMaxValueWidth(cfg)
	data := make([][]string, 0, len(values))
	for _, v := range values {
		data = append(data, []string{regionLabel(v.Region), formatRegionValue(v, cfg.UseColors, maxWidth)})
	}

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error adding table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering table: %w", err)
	}
	return nil
}

// formatRegionValue truncates before coloring so escape codes never get cut.
func formatRegionValue(v RegionValue, useColors bool, maxWidth int) string {
	if v.Status != "" {
		if useColors {
			return contract.GetColorStatus(v.Status)
		}
		return contract.GetPlainStatus(v.Status)
	}

	text := contract.TruncateText(v.Value, maxWidth)
	if useColors && v.Region == schema.FrequencyRegion && text != "" {
		return contract.GetColorFrequency(schema.FrequencyLabel(text))
	}
	return text
}

// regionLabel turns "top-repo" into "Top Repo".
func regionLabel(region schema.Region) string {
	words := strings.Split(string(region), "-")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
