package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/folio/schema"
)

// Indicator label constants.
const (
	FetchingValue = "Fetching" // Request in flight
	SuccessValue  = "Live"     // Data from a fresh cache or a live fetch
	OfflineValue  = "Offline"  // Stale or default data after a failed fetch
	UpdatingValue = "updating now"
)

// Color variables for console output.
var (
	FetchingColor = color.New(color.FgYellow)              // FetchingColor represents a pending request.
	SuccessColor  = color.New(color.FgGreen, color.Bold)   // SuccessColor represents usable, current data.
	OfflineColor  = color.New(color.FgRed, color.Bold)     // OfflineColor represents degraded data.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents the busiest frequency band.
	MediumColor   = color.New(color.FgYellow, color.Bold)
	ModerateColor = color.New(color.FgCyan)
	CasualColor   = color.New(color.FgWhite)
)

// GetPlainStatus returns the plain text label for an indicator status.
func GetPlainStatus(status schema.Status) string {
	switch status {
	case schema.FetchingStatus:
		return FetchingValue
	case schema.SuccessStatus:
		return SuccessValue
	default:
		return OfflineValue
	}
}

// GetColorStatus returns the colored indicator label for console output.
func GetColorStatus(status schema.Status) string {
	text := GetPlainStatus(status)

	switch status {
	case schema.FetchingStatus:
		return FetchingColor.Sprint(text)
	case schema.SuccessStatus:
		return SuccessColor.Sprint(text)
	default:
		return OfflineColor.Sprint(text)
	}
}

// GetColorFrequency returns the colored frequency band for console output.
func GetColorFrequency(label schema.FrequencyLabel) string {
	text := string(label)

	switch label {
	case schema.HighFrequency:
		return HighColor.Sprint(text)
	case schema.MediumFrequency:
		return MediumColor.Sprint(text)
	case schema.ModerateFrequency:
		return ModerateColor.Sprint(text)
	default:
		return CasualColor.Sprint(text)
	}
}

// FormatCountdown renders the time left until the next refresh as mm:ss,
// or "updating now" once the refresh is due.
func FormatCountdown(remaining time.Duration) string {
	if remaining <= 0 {
		return UpdatingValue
	}
	secs := int(remaining.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Bar renders a fixed-width text bar filled to ratio (clamped to [0, 1]).
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	switch {
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
