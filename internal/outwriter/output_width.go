package outwriter

import (
	"os"

	"github.com/huangsam/folio/internal/contract"
	"golang.org/x/term"
)

// GetTerminalWidth returns the width override from config, the detected terminal
// width, or a conservative default.
func GetTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxValueWidth calculates the maximum width of the value column in the
// terminal table based on terminal width.
func GetMaxValueWidth(cfg *contract.Config) int {
	// Region label column plus borders, separators and padding
	available := GetTerminalWidth(cfg) - 16 - 8
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}

// GetBarWidth returns the width of the activity bars so that a bar and its
// caption fit the value column.
func GetBarWidth(cfg *contract.Config) int {
	width := GetMaxValueWidth(cfg) / 3
	if width < 10 {
		return 10
	}
	if width > 30 {
		return 30
	}
	return width
}
