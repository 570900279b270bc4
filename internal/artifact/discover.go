package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Discover returns the regular files directly inside dir whose basename
// matches pattern, as joined paths in lexicographic order.
//
// The scan is not recursive. Symlinks are followed; directories are skipped.
// A missing dir yields no matches.
func Discover(dir string, pattern *regexp.Regexp) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %q: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !pattern.MatchString(name) {
			continue
		}
		full := filepath.Join(dir, name)
		if !entry.Type().IsRegular() {
			info, err := os.Stat(full)
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", full, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
		}
		matches = append(matches, full)
	}

	sort.Strings(matches)
	return matches, nil
}
