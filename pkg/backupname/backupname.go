// Package backupname generates and parses names for point-in-time snapshots
// of the data file, taken by the `ignite-cli backup` command. Names sort
// lexicographically by creation time, so the latest backup in a directory
// can always be found without reading any file's contents.
//
// Filename format: prefix_unixnano.bak
//
// Example: store_1701234567890123456.bak
package backupname

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/emberkv/ignite/pkg/filesys"
)

const extension = ".bak"

// Generate returns a new backup filename for prefix, timestamped with the
// given nanosecond Unix time (the caller supplies it so this function stays
// deterministic and testable).
func Generate(prefix string, unixNano int64) string {
	if prefix == "" {
		prefix = "backup"
	}
	return fmt.Sprintf("%s_%d%s", prefix, unixNano, extension)
}

// ParseTimestamp extracts the nanosecond Unix timestamp embedded in a
// filename produced by Generate.
func ParseTimestamp(fullPath, prefix string) (int64, error) {
	_, filename := filepath.Split(fullPath)

	if !strings.HasPrefix(filename, prefix+"_") {
		return 0, fmt.Errorf("filename %s does not start with expected prefix %s", filename, prefix)
	}
	if !strings.HasSuffix(filename, extension) {
		return 0, fmt.Errorf("filename %s does not have the expected %s extension", filename, extension)
	}

	core := strings.TrimSuffix(strings.TrimPrefix(filename, prefix+"_"), extension)
	ts, err := strconv.ParseInt(core, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse backup timestamp %q: %w", core, err)
	}
	return ts, nil
}

// Latest returns the most recent backup file for prefix in dir, or "" if
// none exist. Lexicographic sort suffices because every name shares the
// same prefix and a fixed-width decimal timestamp component sorts the same
// way numerically and lexically for a bounded time range.
func Latest(dir, prefix string) (string, error) {
	pattern := filepath.Join(dir, prefix+"_*"+extension)
	matches, err := filesys.ReadDir(pattern)
	if err != nil {
		return "", fmt.Errorf("failed to search backup directory with pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", nil
	}

	slices.Sort(matches)
	return matches[len(matches)-1], nil
}
