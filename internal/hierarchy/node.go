// Package hierarchy builds the in-memory working set from loaded
// tables: typed nodes, by-id lookups, parent-to-children groupings and
// the per-node enabled state the map UI toggles.
package hierarchy

import (
	"github.com/terramesa/uplinkmap/internal/dataset"
)

// Kind identifies a node's level in the hierarchy.
type Kind string

const (
	KindProvince Kind = "province"
	KindCity     Kind = "city"
	KindBarangay Kind = "barangay"
)

// Kinds lists the levels from the top of the hierarchy down.
var Kinds = []Kind{KindProvince, KindCity, KindBarangay}

// ParseKind maps a request path segment to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindProvince, KindCity, KindBarangay:
		return Kind(s), true
	}
	return "", false
}

// LatLng is a map coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Node is one entity in the working set. ParentID carries the declared
// parent identifier from the source row whether or not it resolves.
// Coords is nil for nodes without usable coordinates; such nodes stay
// in the tree but never get a marker or a line. Geohash is stamped
// after loading for nodes that have coordinates.
type Node struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	Name     string  `json:"name"`
	ParentID string  `json:"parent_id,omitempty"`
	Coords   *LatLng `json:"coords,omitempty"`
	Geohash  string  `json:"geohash,omitempty"`
}

// HasCoords reports whether the node can be placed on the map.
func (n Node) HasCoords() bool {
	return n.Coords != nil
}

// FromTables flattens loaded tables into nodes. A row with an empty
// display name falls back to its id so the tree always has a label.
func FromTables(t *dataset.Tables) []Node {
	nodes := make([]Node, 0, len(t.Provinces)+len(t.Cities)+len(t.Barangays))
	for _, r := range t.Provinces {
		nodes = append(nodes, Node{
			ID:     r.ID,
			Kind:   KindProvince,
			Name:   nameOrID(r.Name, r.ID),
			Coords: coords(r.Lat, r.Lng),
		})
	}
	for _, r := range t.Cities {
		nodes = append(nodes, Node{
			ID:       r.ID,
			Kind:     KindCity,
			Name:     nameOrID(r.Name, r.ID),
			ParentID: r.ProvinceID,
			Coords:   coords(r.Lat, r.Lng),
		})
	}
	for _, r := range t.Barangays {
		nodes = append(nodes, Node{
			ID:       r.ID,
			Kind:     KindBarangay,
			Name:     nameOrID(r.Name, r.ID),
			ParentID: r.CityID,
			Coords:   coords(r.Lat, r.Lng),
		})
	}
	return nodes
}

func nameOrID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func coords(lat, lng *float64) *LatLng {
	if lat == nil || lng == nil {
		return nil
	}
	return &LatLng{Lat: *lat, Lng: *lng}
}
