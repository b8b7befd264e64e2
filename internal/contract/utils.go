package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"github.com/huangsam/stockcast/schema"
)

// Risk label constants.
const (
	HighValue    = "High"    // High value
	MediumValue  = "Medium"  // Medium value
	LowValue     = "Low"     // Low value
	UnknownValue = "Unknown" // Unknown value
)

// Color variables for console output.
var (
	HighColor    = color.New(color.FgRed, color.Bold) // HighColor represents standard danger.
	MediumColor  = color.New(color.FgYellow)          // MediumColor represents standard caution, not bold.
	LowColor     = color.New(color.FgCyan)            // LowColor represents informational / low-priority signal.
	UnknownColor = color.New(color.FgHiBlack)         // UnknownColor represents missing data.
)

// Trend arrows for console output.
var trendArrows = map[schema.TrendDirection]string{
	schema.TrendIncreasing: "↑",
	schema.TrendDecreasing: "↓",
	schema.TrendStable:     "→",
}

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
}

// GetPlainLabel returns a plain text label for a risk level. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(level schema.RiskLevel) string {
	switch level {
	case schema.HighRisk:
		return HighValue
	case schema.MediumRisk:
		return MediumValue
	case schema.LowRisk:
		return LowValue
	default:
		return UnknownValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(level schema.RiskLevel) string {
	text := GetPlainLabel(level)

	switch text {
	case HighValue:
		return HighColor.Sprint(text)
	case MediumValue:
		return MediumColor.Sprint(text)
	case LowValue:
		return LowColor.Sprint(text)
	default:
		return UnknownColor.Sprint(text)
	}
}

// GetTrendArrow returns a one-character arrow for a trend direction.
func GetTrendArrow(direction schema.TrendDirection) string {
	if arrow, ok := trendArrows[direction]; ok {
		return arrow
	}
	return "?"
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.WithError(err).Warn(msg)
}

// LogInfo logs an informational message with structured fields to stderr.
func LogInfo(msg string, fields map[string]any) {
	log.WithFields(log.Fields(fields)).Info(msg)
}

// SetLogLevel sets the minimum level that reaches stderr.
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	log.SetLevel(lvl)
	return nil
}

// GetCacheDBFilePath returns the path to the SQLite DB file for report caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".stockcast_cache.db"
	}
	return filepath.Join(homeDir, ".stockcast_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".stockcast_history.db"
	}
	return filepath.Join(homeDir, ".stockcast_history.db")
}

// TruncateName truncates a product name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
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
