// Package geojson renders the working set as a GeoJSON
// FeatureCollection: one Point feature per placed node and one
// LineString feature per connector line. Enabled state and computed
// line visibility travel in feature properties so any GeoJSON viewer
// can style the export.
package geojson

import (
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/visibility"
)

// Geometry is one GeoJSON geometry. Coordinates is a [lng, lat] pair
// for points and a list of those pairs for line strings.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is one GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Count    int       `json:"count"`
}

// Marker colors follow the simplestyle convention most viewers
// understand.
const (
	colorNormal = "#2c7fb8"
	colorGreyed = "#9a9a9a"
)

// Encode renders every placed node and every connector line under the
// given flags. Marker color tracks each node's own flag alone; line
// features carry the computed visibility.
func Encode(ix *hierarchy.Index, flags visibility.Flags, vis visibility.Result) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection"}

	for _, n := range ix.All() {
		if !n.HasCoords() {
			continue
		}
		enabled := nodeEnabled(flags, n)
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: position(*n.Coords)},
			Properties: map[string]any{
				"id":           n.ID,
				"kind":         string(n.Kind),
				"name":         n.Name,
				"parent_id":    n.ParentID,
				"geohash":      n.Geohash,
				"enabled":      enabled,
				"icon":         string(visibility.Icon(enabled)),
				"marker-color": markerColor(enabled),
			},
		})
	}

	for _, l := range ix.Links() {
		var visible bool
		switch l.Kind {
		case hierarchy.KindBarangay:
			visible = vis.BarangayLine[l.ChildID]
		case hierarchy.KindCity:
			visible = vis.CityLine[l.ChildID]
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: [][]float64{position(l.From), position(l.To)},
			},
			Properties: map[string]any{
				"link":      linkName(l.Kind),
				"child_id":  l.ChildID,
				"parent_id": l.ParentID,
				"visible":   visible,
				"stroke":    strokeColor(visible),
			},
		})
	}

	fc.Count = len(fc.Features)
	return fc
}

// position emits GeoJSON coordinate order, longitude first.
func position(ll hierarchy.LatLng) []float64 {
	return []float64{ll.Lng, ll.Lat}
}

func nodeEnabled(flags visibility.Flags, n hierarchy.Node) bool {
	var m map[string]bool
	switch n.Kind {
	case hierarchy.KindProvince:
		m = flags.Provinces
	case hierarchy.KindCity:
		m = flags.Cities
	case hierarchy.KindBarangay:
		m = flags.Barangays
	}
	v, ok := m[n.ID]
	return !ok || v
}

func markerColor(enabled bool) string {
	if enabled {
		return colorNormal
	}
	return colorGreyed
}

func strokeColor(visible bool) string {
	if visible {
		return colorNormal
	}
	return colorGreyed
}

func linkName(kind hierarchy.Kind) string {
	if kind == hierarchy.KindBarangay {
		return "barangay_city"
	}
	return "city_province"
}
