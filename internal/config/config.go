package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (UPLINKMAP_*). A .env file in the working
// directory is read first so it can supply those variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: UPLINKMAP_PORT -> port, etc.
	if err := k.Load(env.Provider("UPLINKMAP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "UPLINKMAP_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validTileProviders is the set of recognized tile provider values.
var validTileProviders = map[TileProvider]bool{
	TileOSM:        true,
	TileCartoLight: true,
	TileCartoDark:  true,
	TileCustom:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Provinces == "" {
		return fmt.Errorf("provinces pattern is required")
	}
	if c.Cities == "" {
		return fmt.Errorf("cities pattern is required")
	}
	if c.Barangays == "" {
		return fmt.Errorf("barangays pattern is required")
	}

	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.Tiles != "" && !validTileProviders[c.Tiles] {
		return fmt.Errorf("invalid tiles %q: must be one of osm, carto-light, carto-dark, custom", c.Tiles)
	}
	if c.Tiles == TileCustom && c.TileURL == "" {
		return fmt.Errorf("tile_url is required when tiles is %q", TileCustom)
	}

	if c.MapCenterLat < -90 || c.MapCenterLat > 90 {
		return fmt.Errorf("map_center_lat must be between -90 and 90, got %g", c.MapCenterLat)
	}
	if c.MapCenterLng < -180 || c.MapCenterLng > 180 {
		return fmt.Errorf("map_center_lng must be between -180 and 180, got %g", c.MapCenterLng)
	}
	if c.MapZoom < 1 || c.MapZoom > 19 {
		return fmt.Errorf("map_zoom must be between 1 and 19, got %d", c.MapZoom)
	}

	if c.FuzzyDistance < 0 {
		return fmt.Errorf("fuzzy_distance must be non-negative")
	}

	return nil
}
