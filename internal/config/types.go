package config

// TileProvider identifies a base-map tile source for the map page.
type TileProvider string

const (
	TileOSM        TileProvider = "osm"
	TileCartoLight TileProvider = "carto-light"
	TileCartoDark  TileProvider = "carto-dark"
	TileCustom     TileProvider = "custom"
)

// Config is the top-level uplinkmap configuration, corresponding to .uplinkmap.yml.
type Config struct {
	DataDir         string       `yaml:"data_dir" koanf:"data_dir"`
	Provinces       string       `yaml:"provinces" koanf:"provinces"`
	Cities          string       `yaml:"cities" koanf:"cities"`
	Barangays       string       `yaml:"barangays" koanf:"barangays"`
	DBPath          string       `yaml:"db_path" koanf:"db_path"`
	Port            int          `yaml:"port" koanf:"port"`
	AllowAllOrigins bool         `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Tiles           TileProvider `yaml:"tiles" koanf:"tiles"`
	TileURL         string       `yaml:"tile_url" koanf:"tile_url"`
	MapCenterLat    float64      `yaml:"map_center_lat" koanf:"map_center_lat"`
	MapCenterLng    float64      `yaml:"map_center_lng" koanf:"map_center_lng"`
	MapZoom         int          `yaml:"map_zoom" koanf:"map_zoom"`
	FuzzyDistance   int          `yaml:"fuzzy_distance" koanf:"fuzzy_distance"`
}
