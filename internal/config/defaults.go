package config

// TilePreset describes the Leaflet tile layer for a tile provider.
type TilePreset struct {
	URL         string
	Attribution string
	MaxZoom     int
}

// tilePresets maps each known tile provider to its layer settings.
var tilePresets = map[TileProvider]TilePreset{
	TileOSM: {
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     19,
	},
	TileCartoLight: {
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		MaxZoom:     20,
	},
	TileCartoDark: {
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		MaxZoom:     20,
	},
}

// DefaultConfig returns a Config with sensible defaults. The map view is
// centered on the Philippines, where the sample datasets come from.
func DefaultConfig() *Config {
	return &Config{
		DataDir:         "data",
		Provinces:       "provinces*.csv",
		Cities:          "cities*.csv",
		Barangays:       "barangays*.csv",
		DBPath:          "uplinkmap.db",
		Port:            8095,
		AllowAllOrigins: true,
		Tiles:           TileOSM,
		MapCenterLat:    12.8797,
		MapCenterLng:    121.7740,
		MapZoom:         6,
		FuzzyDistance:   2,
	}
}

// GetTilePreset returns the layer settings for the given tile provider.
// Returns the OSM preset if the provider is not found.
func GetTilePreset(p TileProvider) TilePreset {
	if preset, ok := tilePresets[p]; ok {
		return preset
	}
	return tilePresets[TileOSM]
}

// TileSource resolves the tile layer for the map page: the custom URL when
// one is configured, otherwise the preset for the configured provider.
func (c *Config) TileSource() TilePreset {
	if c.Tiles == TileCustom && c.TileURL != "" {
		return TilePreset{URL: c.TileURL, MaxZoom: 19}
	}
	return GetTilePreset(c.Tiles)
}
