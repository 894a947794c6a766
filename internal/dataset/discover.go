package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Patterns selects the three table files. Each entry is a doublestar
// glob resolved inside the data directory; absolute paths and URLs
// pass through as given.
type Patterns struct {
	Provinces string
	Cities    string
	Barangays string
}

// Discover resolves each pattern to a concrete source. Globs match
// against the data directory and the lexically first match wins, so
// repeated runs over the same tree pick the same files.
func Discover(dataDir string, p Patterns) (Sources, error) {
	var (
		s   Sources
		err error
	)
	if s.Provinces, err = resolve(dataDir, p.Provinces); err != nil {
		return Sources{}, fmt.Errorf("provinces: %w", err)
	}
	if s.Cities, err = resolve(dataDir, p.Cities); err != nil {
		return Sources{}, fmt.Errorf("cities: %w", err)
	}
	if s.Barangays, err = resolve(dataDir, p.Barangays); err != nil {
		return Sources{}, fmt.Errorf("barangays: %w", err)
	}
	return s, nil
}

func resolve(dataDir, pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("no file pattern configured")
	}
	if strings.HasPrefix(pattern, "http://") || strings.HasPrefix(pattern, "https://") {
		return pattern, nil
	}
	if filepath.IsAbs(pattern) {
		return pattern, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dataDir), filepath.ToSlash(pattern))
	if err != nil {
		return "", fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no file matches %q under %s", pattern, dataDir)
	}
	sort.Strings(matches)
	return filepath.Join(dataDir, filepath.FromSlash(matches[0])), nil
}
