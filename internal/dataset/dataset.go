// Package dataset loads the three tabular files describing provinces,
// cities and barangays. Loading is strict about structure (a file that
// cannot be opened or parsed aborts the load) and lenient about rows:
// rows missing their required keys are dropped and counted, and
// coordinate cells that fail to parse leave the row in place without
// coordinates.
package dataset

// ProvinceRow is one kept row of the provinces table.
type ProvinceRow struct {
	ID   string
	Name string
	Lat  *float64
	Lng  *float64
}

// CityRow is one kept row of the cities table. ProvinceID is optional
// and may name a province that never loaded.
type CityRow struct {
	ID         string
	Name       string
	ProvinceID string
	Lat        *float64
	Lng        *float64
}

// BarangayRow is one kept row of the barangays table. CityID is a
// required key; rows without it are dropped.
type BarangayRow struct {
	ID     string
	Name   string
	CityID string
	Lat    *float64
	Lng    *float64
}

// KindStats counts what happened to one table's rows during a load.
type KindStats struct {
	Read       int `json:"read"`
	Kept       int `json:"kept"`
	MissingKey int `json:"missing_key"`
	Duplicate  int `json:"duplicate"`
}

// Dropped is the number of rows read but not kept.
func (s KindStats) Dropped() int {
	return s.Read - s.Kept
}

// Stats aggregates per-table load statistics.
type Stats struct {
	Provinces KindStats `json:"provinces"`
	Cities    KindStats `json:"cities"`
	Barangays KindStats `json:"barangays"`
}

// Dropped is the total number of dropped rows across all tables.
func (s Stats) Dropped() int {
	return s.Provinces.Dropped() + s.Cities.Dropped() + s.Barangays.Dropped()
}

// Kept is the total number of kept rows across all tables.
func (s Stats) Kept() int {
	return s.Provinces.Kept + s.Cities.Kept + s.Barangays.Kept
}

// Tables holds the three loaded tables plus the load statistics.
type Tables struct {
	Provinces []ProvinceRow
	Cities    []CityRow
	Barangays []BarangayRow
	Stats     Stats
}

// Sources names where each table comes from, either a filesystem path
// or an http(s) URL.
type Sources struct {
	Provinces string
	Cities    string
	Barangays string
}
