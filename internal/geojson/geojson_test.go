package geojson

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/visibility"
)

func testIndex() *hierarchy.Index {
	return hierarchy.Build([]hierarchy.Node{
		{ID: "P1", Kind: hierarchy.KindProvince, Name: "Aurora", Coords: &hierarchy.LatLng{Lat: 15.75, Lng: 121.33}},
		{ID: "C1", Kind: hierarchy.KindCity, Name: "Baler", ParentID: "P1", Coords: &hierarchy.LatLng{Lat: 15.76, Lng: 121.56}},
		{ID: "B1", Kind: hierarchy.KindBarangay, Name: "Sabang", ParentID: "C1", Coords: &hierarchy.LatLng{Lat: 15.77, Lng: 121.57}},
		{ID: "B2", Kind: hierarchy.KindBarangay, Name: "Unmapped", ParentID: "C1"},
	})
}

func encodeAllEnabled(t *testing.T) *FeatureCollection {
	t.Helper()
	ix := testIndex()
	snap := ix.Snapshot()
	flags := visibility.NewFlags(snap)
	return Encode(ix, flags, visibility.Compute(snap, flags))
}

func TestEncodeShape(t *testing.T) {
	fc := encodeAllEnabled(t)

	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q", fc.Type)
	}
	// Three placed markers plus the C1 and B1 lines; B2 has no
	// coordinates and contributes nothing.
	if fc.Count != 5 || len(fc.Features) != 5 {
		t.Fatalf("count = %d, features = %d, want 5", fc.Count, len(fc.Features))
	}

	marker := fc.Features[0]
	if marker.Geometry.Type != "Point" {
		t.Errorf("first geometry = %q, want Point", marker.Geometry.Type)
	}
	coords, ok := marker.Geometry.Coordinates.([]float64)
	if !ok || len(coords) != 2 {
		t.Fatalf("point coordinates = %#v", marker.Geometry.Coordinates)
	}
	if coords[0] != 121.33 || coords[1] != 15.75 {
		t.Errorf("coordinates = %v, want longitude first", coords)
	}
	if marker.Properties["id"] != "P1" || marker.Properties["enabled"] != true {
		t.Errorf("marker properties = %v", marker.Properties)
	}
}

func TestEncodeDisabledNode(t *testing.T) {
	ix := testIndex()
	snap := ix.Snapshot()
	flags := visibility.NewFlags(snap)
	flags.Cities["C1"] = false
	fc := Encode(ix, flags, visibility.Compute(snap, flags))

	var cityMarker, cityLine, barangayLine *Feature
	for i := range fc.Features {
		f := &fc.Features[i]
		switch {
		case f.Properties["id"] == "C1":
			cityMarker = f
		case f.Properties["link"] == "city_province":
			cityLine = f
		case f.Properties["link"] == "barangay_city":
			barangayLine = f
		}
	}

	if cityMarker == nil || cityLine == nil || barangayLine == nil {
		t.Fatalf("missing features: %+v", fc.Features)
	}
	if cityMarker.Properties["enabled"] != false {
		t.Error("C1 marker still enabled")
	}
	if cityMarker.Properties["icon"] != string(visibility.IconGreyed) {
		t.Errorf("C1 icon = %v, want greyed", cityMarker.Properties["icon"])
	}
	if cityLine.Properties["visible"] != false {
		t.Error("city line still visible")
	}
	if barangayLine.Properties["visible"] != false {
		t.Error("barangay line still visible with its city disabled")
	}
}

func TestEncodeDisabledProvinceKeepsBarangayLine(t *testing.T) {
	ix := testIndex()
	snap := ix.Snapshot()
	flags := visibility.NewFlags(snap)
	flags.Provinces["P1"] = false
	fc := Encode(ix, flags, visibility.Compute(snap, flags))

	for _, f := range fc.Features {
		switch f.Properties["link"] {
		case "city_province":
			if f.Properties["visible"] != false {
				t.Error("city line visible with its province disabled")
			}
		case "barangay_city":
			if f.Properties["visible"] != true {
				t.Error("barangay line hidden by a disabled province")
			}
		}
	}
}

func TestEncodeMarshals(t *testing.T) {
	out, err := json.Marshal(encodeAllEnabled(t))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"type":"FeatureCollection"`) {
		t.Errorf("missing collection type in %s", s)
	}
	if !strings.Contains(s, `"LineString"`) {
		t.Error("no line features in output")
	}
}
