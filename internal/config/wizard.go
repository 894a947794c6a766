package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/manifoldco/promptui"
)

// dataDirCandidates are checked, in order, when the wizard suggests a data
// directory that already holds province CSVs.
var dataDirCandidates = []string{"data", "csv", "datasets", "."}

// detectDataDir looks for a directory that already contains a provinces table.
func detectDataDir() (string, bool) {
	for _, dir := range dataDirCandidates {
		matches, _ := doublestar.Glob(os.DirFS(dir), "provinces*.csv")
		if len(matches) > 0 {
			return dir, true
		}
	}
	return "", false
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .uplinkmap.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to uplinkmap! Let's configure your map.")
	fmt.Println()

	cfg := DefaultConfig()

	// Suggest a directory that already holds data.
	if dir, ok := detectDataDir(); ok {
		fmt.Printf("Found province data under %s\n\n", dir)
		cfg.DataDir = dir
	}

	// 1. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Directory holding the CSV tables",
		Default: cfg.DataDir,
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = strings.TrimSpace(dataDir)

	// 2. Table file patterns.
	if cfg.Provinces, err = patternPrompt("Provinces file pattern", cfg.Provinces); err != nil {
		return nil, err
	}
	if cfg.Cities, err = patternPrompt("Cities file pattern", cfg.Cities); err != nil {
		return nil, err
	}
	if cfg.Barangays, err = patternPrompt("Barangays file pattern", cfg.Barangays); err != nil {
		return nil, err
	}

	// 3. Database path.
	dbPrompt := promptui.Prompt{
		Label:   "SQLite database path",
		Default: cfg.DBPath,
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("db path: %w", err)
	}
	cfg.DBPath = strings.TrimSpace(dbPath)

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port for the map server",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 5. Base map tiles.
	tilesPrompt := promptui.Select{
		Label: "Select base map tiles",
		Items: []string{
			"osm         (OpenStreetMap standard)",
			"carto-light (CARTO light, best marker contrast)",
			"carto-dark  (CARTO dark)",
		},
	}
	tilesIdx, _, err := tilesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("tiles selection: %w", err)
	}
	providers := []TileProvider{TileOSM, TileCartoLight, TileCartoDark}
	cfg.Tiles = providers[tilesIdx]

	// Point out tables the loader will not find yet.
	for _, pattern := range missingTables(cfg) {
		fmt.Printf("\nNote: no file matches %s under %s yet. Drop the CSV in before running uplinkmap import.\n", pattern, cfg.DataDir)
	}

	// Save to .uplinkmap.yml.
	configPath := ".uplinkmap.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// patternPrompt asks for one table's file pattern.
func patternPrompt(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: def,
	}
	s, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(s), nil
}

// validatePort rejects prompt input that is not a usable TCP port.
func validatePort(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// missingTables returns the configured patterns that match no file yet.
// URL sources are assumed reachable and absolute paths are checked directly.
func missingTables(cfg *Config) []string {
	var missing []string
	for _, pattern := range []string{cfg.Provinces, cfg.Cities, cfg.Barangays} {
		if strings.HasPrefix(pattern, "http://") || strings.HasPrefix(pattern, "https://") {
			continue
		}
		if filepath.IsAbs(pattern) {
			if _, err := os.Stat(pattern); err != nil {
				missing = append(missing, pattern)
			}
			continue
		}
		matches, _ := doublestar.Glob(os.DirFS(cfg.DataDir), filepath.ToSlash(pattern))
		if len(matches) == 0 {
			missing = append(missing, pattern)
		}
	}
	return missing
}
