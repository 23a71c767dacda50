// Package shared provides common utility functions used across multiple
// packages in the kpkg codebase.
package shared

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}

// ParseTimeFlexible parses timestamps as they appear in management
// profiles and package receipts: RFC3339 variants, space-separated
// datetimes, plain dates, or Unix epoch seconds. Unparseable values
// yield the zero time.
func ParseTimeFlexible(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	if epoch, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC()
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
