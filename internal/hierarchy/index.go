package hierarchy

import (
	"sort"

	"github.com/terramesa/uplinkmap/internal/visibility"
)

// Index is the immutable lookup structure built once per dataset:
// by-id maps per kind plus parent-to-children groupings. Children are
// name-sorted so tree and marker output is stable across runs.
type Index struct {
	provinces map[string]Node
	cities    map[string]Node
	barangays map[string]Node

	provinceOrder   []string
	citiesOf        map[string][]string
	barangaysOf     map[string][]string
	rootCities      []string
	orphanBarangays []string
}

// Build constructs the index. Nodes repeating an earlier id within
// their kind are ignored, first row wins.
func Build(nodes []Node) *Index {
	ix := &Index{
		provinces:   make(map[string]Node),
		cities:      make(map[string]Node),
		barangays:   make(map[string]Node),
		citiesOf:    make(map[string][]string),
		barangaysOf: make(map[string][]string),
	}
	for _, n := range nodes {
		m, ok := ix.kindMap(n.Kind)
		if !ok {
			continue
		}
		if _, dup := m[n.ID]; dup {
			continue
		}
		m[n.ID] = n
	}

	for id := range ix.provinces {
		ix.provinceOrder = append(ix.provinceOrder, id)
	}
	ix.sortIDs(ix.provinceOrder, ix.provinces)

	for id, c := range ix.cities {
		if _, ok := ix.provinces[c.ParentID]; c.ParentID != "" && ok {
			ix.citiesOf[c.ParentID] = append(ix.citiesOf[c.ParentID], id)
		} else {
			ix.rootCities = append(ix.rootCities, id)
		}
	}
	for pid := range ix.citiesOf {
		ix.sortIDs(ix.citiesOf[pid], ix.cities)
	}
	ix.sortIDs(ix.rootCities, ix.cities)

	for id, b := range ix.barangays {
		if _, ok := ix.cities[b.ParentID]; b.ParentID != "" && ok {
			ix.barangaysOf[b.ParentID] = append(ix.barangaysOf[b.ParentID], id)
		} else {
			ix.orphanBarangays = append(ix.orphanBarangays, id)
		}
	}
	for cid := range ix.barangaysOf {
		ix.sortIDs(ix.barangaysOf[cid], ix.barangays)
	}
	ix.sortIDs(ix.orphanBarangays, ix.barangays)

	return ix
}

func (ix *Index) kindMap(kind Kind) (map[string]Node, bool) {
	switch kind {
	case KindProvince:
		return ix.provinces, true
	case KindCity:
		return ix.cities, true
	case KindBarangay:
		return ix.barangays, true
	}
	return nil, false
}

func (ix *Index) sortIDs(ids []string, lookup map[string]Node) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := lookup[ids[i]], lookup[ids[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Node looks up one node by kind and id.
func (ix *Index) Node(kind Kind, id string) (Node, bool) {
	m, ok := ix.kindMap(kind)
	if !ok {
		return Node{}, false
	}
	n, ok := m[id]
	return n, ok
}

// Parent returns a node's resolved parent, if any.
func (ix *Index) Parent(n Node) (Node, bool) {
	switch n.Kind {
	case KindCity:
		p, ok := ix.provinces[n.ParentID]
		return p, ok && n.ParentID != ""
	case KindBarangay:
		c, ok := ix.cities[n.ParentID]
		return c, ok && n.ParentID != ""
	}
	return Node{}, false
}

// Provinces returns all provinces in display order.
func (ix *Index) Provinces() []Node {
	return ix.lookupAll(ix.provinceOrder, ix.provinces)
}

// CitiesOf returns a province's cities in display order.
func (ix *Index) CitiesOf(provinceID string) []Node {
	return ix.lookupAll(ix.citiesOf[provinceID], ix.cities)
}

// BarangaysOf returns a city's barangays in display order.
func (ix *Index) BarangaysOf(cityID string) []Node {
	return ix.lookupAll(ix.barangaysOf[cityID], ix.barangays)
}

// RootCities returns cities whose province never resolved.
func (ix *Index) RootCities() []Node {
	return ix.lookupAll(ix.rootCities, ix.cities)
}

// OrphanBarangays returns barangays whose city never resolved.
func (ix *Index) OrphanBarangays() []Node {
	return ix.lookupAll(ix.orphanBarangays, ix.barangays)
}

func (ix *Index) lookupAll(ids []string, lookup map[string]Node) []Node {
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, lookup[id])
	}
	return nodes
}

// All returns every node, provinces first, in display order.
func (ix *Index) All() []Node {
	nodes := make([]Node, 0, len(ix.provinces)+len(ix.cities)+len(ix.barangays))
	nodes = append(nodes, ix.Provinces()...)
	for _, p := range ix.provinceOrder {
		nodes = append(nodes, ix.CitiesOf(p)...)
	}
	nodes = append(nodes, ix.RootCities()...)
	for _, c := range ix.allCityIDs() {
		nodes = append(nodes, ix.BarangaysOf(c)...)
	}
	nodes = append(nodes, ix.OrphanBarangays()...)
	return nodes
}

func (ix *Index) allCityIDs() []string {
	ids := make([]string, 0, len(ix.cities))
	for _, p := range ix.provinceOrder {
		ids = append(ids, ix.citiesOf[p]...)
	}
	ids = append(ids, ix.rootCities...)
	return ids
}

// Counts summarizes the working set size per kind.
type Counts struct {
	Provinces int `json:"provinces"`
	Cities    int `json:"cities"`
	Barangays int `json:"barangays"`
}

// Counts reports how many nodes of each kind are indexed.
func (ix *Index) Counts() Counts {
	return Counts{
		Provinces: len(ix.provinces),
		Cities:    len(ix.cities),
		Barangays: len(ix.barangays),
	}
}

// Snapshot projects the index into the read-only topology view the
// visibility engine evaluates against.
func (ix *Index) Snapshot() visibility.Snapshot {
	var snap visibility.Snapshot
	for _, n := range ix.Provinces() {
		snap.Provinces = append(snap.Provinces, nodeInfo(n))
	}
	for _, id := range ix.allCityIDs() {
		snap.Cities = append(snap.Cities, nodeInfo(ix.cities[id]))
	}
	for _, id := range ix.allCityIDs() {
		for _, b := range ix.BarangaysOf(id) {
			snap.Barangays = append(snap.Barangays, nodeInfo(b))
		}
	}
	for _, b := range ix.OrphanBarangays() {
		snap.Barangays = append(snap.Barangays, nodeInfo(b))
	}
	return snap
}

func nodeInfo(n Node) visibility.NodeInfo {
	return visibility.NodeInfo{ID: n.ID, ParentID: n.ParentID, HasCoords: n.HasCoords()}
}

// Link is one drawable connector line: a child with coordinates joined
// to its resolved parent with coordinates. Kind is the child's kind.
type Link struct {
	Kind     Kind   `json:"kind"`
	ChildID  string `json:"child_id"`
	ParentID string `json:"parent_id"`
	From     LatLng `json:"from"`
	To       LatLng `json:"to"`
}

// Links enumerates every line that can be drawn at all. Whether a line
// is shown at any moment is the visibility engine's call; existence
// only requires coordinates at both ends.
func (ix *Index) Links() []Link {
	var links []Link
	for _, id := range ix.allCityIDs() {
		c := ix.cities[id]
		p, ok := ix.Parent(c)
		if !ok || !c.HasCoords() || !p.HasCoords() {
			continue
		}
		links = append(links, Link{
			Kind:     KindCity,
			ChildID:  c.ID,
			ParentID: p.ID,
			From:     *c.Coords,
			To:       *p.Coords,
		})
	}
	for _, cid := range ix.allCityIDs() {
		for _, b := range ix.BarangaysOf(cid) {
			c, ok := ix.Parent(b)
			if !ok || !b.HasCoords() || !c.HasCoords() {
				continue
			}
			links = append(links, Link{
				Kind:     KindBarangay,
				ChildID:  b.ID,
				ParentID: c.ID,
				From:     *b.Coords,
				To:       *c.Coords,
			})
		}
	}
	return links
}

// TreeNode is one row of the checkbox tree sent to the UI.
type TreeNode struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Name      string     `json:"name"`
	HasCoords bool       `json:"has_coords"`
	Children  []TreeNode `json:"children,omitempty"`
}

// Tree groups the working set for display: provinces with their cities
// and barangays, then anything whose parent never resolved.
type Tree struct {
	Provinces           []TreeNode `json:"provinces"`
	UnassignedCities    []TreeNode `json:"unassigned_cities,omitempty"`
	UnassignedBarangays []TreeNode `json:"unassigned_barangays,omitempty"`
}

// Tree builds the display tree.
func (ix *Index) Tree() Tree {
	var t Tree
	for _, p := range ix.Provinces() {
		tn := treeNode(p)
		for _, c := range ix.CitiesOf(p.ID) {
			tn.Children = append(tn.Children, ix.cityTreeNode(c))
		}
		t.Provinces = append(t.Provinces, tn)
	}
	for _, c := range ix.RootCities() {
		t.UnassignedCities = append(t.UnassignedCities, ix.cityTreeNode(c))
	}
	for _, b := range ix.OrphanBarangays() {
		t.UnassignedBarangays = append(t.UnassignedBarangays, treeNode(b))
	}
	return t
}

func (ix *Index) cityTreeNode(c Node) TreeNode {
	tn := treeNode(c)
	for _, b := range ix.BarangaysOf(c.ID) {
		tn.Children = append(tn.Children, treeNode(b))
	}
	return tn
}

func treeNode(n Node) TreeNode {
	return TreeNode{ID: n.ID, Kind: n.Kind, Name: n.Name, HasCoords: n.HasCoords()}
}
