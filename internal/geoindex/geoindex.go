// Package geoindex answers nearest-node queries over the placed nodes
// of the working set using an S2 cell index, and stamps geohash tokens
// onto nodes that carry coordinates.
package geoindex

import (
	"math"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"

	"github.com/terramesa/uplinkmap/internal/hierarchy"
)

// cellLevel sets the S2 index granularity. Level 10 gives roughly
// 10km cells, so a query with its eight neighbor cells covers the
// distances this dataset cares about.
const cellLevel = 10

// maxDistance is ~100km in radians on the unit sphere. Nearest returns
// nothing when even the closest node is farther out.
const maxDistance = 0.0157

// earthRadiusKM converts unit-sphere radians to kilometres.
const earthRadiusKM = 6371.0

// geohashPrecision is the token length stamped on nodes, roughly 150m
// of resolution.
const geohashPrecision = 8

// Geohash returns the token for a coordinate pair.
func Geohash(lat, lng float64) string {
	return geohash.EncodeWithPrecision(lat, lng, geohashPrecision)
}

// Stamp fills in the geohash of every node that has coordinates.
func Stamp(nodes []hierarchy.Node) {
	for i := range nodes {
		if c := nodes[i].Coords; c != nil {
			nodes[i].Geohash = Geohash(c.Lat, c.Lng)
		}
	}
}

// Index is an immutable spatial index over the nodes that can be
// placed on the map.
type Index struct {
	nodes []hierarchy.Node
	cells map[s2.CellID][]int
}

// New indexes every node that has coordinates; the rest are ignored.
func New(nodes []hierarchy.Node) *Index {
	ix := &Index{cells: make(map[s2.CellID][]int)}
	for _, n := range nodes {
		if !n.HasCoords() {
			continue
		}
		i := len(ix.nodes)
		ix.nodes = append(ix.nodes, n)
		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(n.Coords.Lat, n.Coords.Lng)).Parent(cellLevel)
		ix.cells[cell] = append(ix.cells[cell], i)
	}
	return ix
}

// Len reports how many nodes are indexed.
func (ix *Index) Len() int {
	return len(ix.nodes)
}

// Match is one nearest-query hit.
type Match struct {
	Node       hierarchy.Node `json:"node"`
	DistanceKM float64        `json:"distance_km"`
}

// Nearest returns the closest placed node within roughly 100km of the
// query point. Ties break by kind (province first), then name, then
// id, so repeated queries give the same answer.
func (ix *Index) Nearest(lat, lng float64) (Match, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Match{}, false
	}

	queryLL := s2.LatLngFromDegrees(lat, lng)
	queryCell := s2.CellIDFromLatLng(queryLL).Parent(cellLevel)

	type candidate struct {
		idx  int
		dist float64
	}
	var candidates []candidate
	for _, cell := range cellAndNeighbors(queryCell) {
		for _, i := range ix.cells[cell] {
			n := ix.nodes[i]
			nodeLL := s2.LatLngFromDegrees(n.Coords.Lat, n.Coords.Lng)
			candidates = append(candidates, candidate{idx: i, dist: float64(queryLL.Distance(nodeLL))})
		}
	}
	if len(candidates) == 0 {
		return Match{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		na, nb := ix.nodes[a.idx], ix.nodes[b.idx]
		if na.Kind != nb.Kind {
			return kindRank(na.Kind) < kindRank(nb.Kind)
		}
		if na.Name != nb.Name {
			return na.Name < nb.Name
		}
		return na.ID < nb.ID
	})

	best := candidates[0]
	if best.dist > maxDistance {
		return Match{}, false
	}
	return Match{Node: ix.nodes[best.idx], DistanceKM: best.dist * earthRadiusKM}, true
}

// cellAndNeighbors returns the cell plus its eight surrounding cells.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edge := cell.EdgeNeighbors()
	for i := 0; i < 4; i++ {
		cells = append(cells, edge[i])
	}

	seen := make(map[s2.CellID]bool, 9)
	for _, c := range cells {
		seen[c] = true
	}
	for i := 0; i < 4; i++ {
		for _, corner := range edge[i].EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}

func kindRank(k hierarchy.Kind) int {
	switch k {
	case hierarchy.KindProvince:
		return 0
	case hierarchy.KindCity:
		return 1
	default:
		return 2
	}
}
