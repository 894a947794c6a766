// Package visibility decides which connector lines between map nodes
// are drawn for a given assignment of enabled flags.
//
// The rules run against a static topology snapshot built once at load
// time; the package holds no state and performs no I/O, so the engine
// can be exercised without a map widget or an HTTP server.
package visibility

// NodeInfo is the read-only view of one node the engine needs: its id,
// its resolved parent id (empty when the node has no parent in the
// working set) and whether the node carries coordinates.
type NodeInfo struct {
	ID        string
	ParentID  string
	HasCoords bool
}

// Snapshot is the static topology the engine evaluates against.
type Snapshot struct {
	Provinces []NodeInfo
	Cities    []NodeInfo
	Barangays []NodeInfo
}

// Flags holds the enabled flag for every node, keyed by id within each
// kind. A node missing from its map counts as enabled, matching the
// default state of a freshly loaded dataset.
type Flags struct {
	Provinces map[string]bool `json:"provinces"`
	Cities    map[string]bool `json:"cities"`
	Barangays map[string]bool `json:"barangays"`
}

// NewFlags returns a flag set covering every node in the snapshot,
// all enabled.
func NewFlags(snap Snapshot) Flags {
	f := Flags{
		Provinces: make(map[string]bool, len(snap.Provinces)),
		Cities:    make(map[string]bool, len(snap.Cities)),
		Barangays: make(map[string]bool, len(snap.Barangays)),
	}
	for _, n := range snap.Provinces {
		f.Provinces[n.ID] = true
	}
	for _, n := range snap.Cities {
		f.Cities[n.ID] = true
	}
	for _, n := range snap.Barangays {
		f.Barangays[n.ID] = true
	}
	return f
}

// Clone returns an independent copy of the flag set.
func (f Flags) Clone() Flags {
	c := Flags{
		Provinces: make(map[string]bool, len(f.Provinces)),
		Cities:    make(map[string]bool, len(f.Cities)),
		Barangays: make(map[string]bool, len(f.Barangays)),
	}
	for id, v := range f.Provinces {
		c.Provinces[id] = v
	}
	for id, v := range f.Cities {
		c.Cities[id] = v
	}
	for id, v := range f.Barangays {
		c.Barangays[id] = v
	}
	return c
}

// Result maps every connector line that exists, keyed by the child
// node's id, to whether it should be drawn. Lines that do not exist
// (an endpoint without coordinates, or an unresolved parent) have no
// entry at all.
type Result struct {
	BarangayLine map[string]bool `json:"barangay_line"`
	CityLine     map[string]bool `json:"city_line"`
}

// Compute evaluates line visibility for the whole snapshot.
//
// A barangay line is visible while both the barangay and its city are
// enabled; a city line while both the city and its province are
// enabled. The asymmetry is intentional and preserved exactly:
// disabling a province hides only the city lines into it, never the
// barangay lines beneath its cities, while disabling a city hides its
// own uplink and every barangay line attached to it.
func Compute(snap Snapshot, flags Flags) Result {
	provinces := make(map[string]NodeInfo, len(snap.Provinces))
	for _, p := range snap.Provinces {
		provinces[p.ID] = p
	}
	cities := make(map[string]NodeInfo, len(snap.Cities))
	for _, c := range snap.Cities {
		cities[c.ID] = c
	}

	res := Result{
		BarangayLine: make(map[string]bool),
		CityLine:     make(map[string]bool),
	}
	for _, c := range snap.Cities {
		if c.ParentID == "" || !c.HasCoords {
			continue
		}
		p, ok := provinces[c.ParentID]
		if !ok || !p.HasCoords {
			continue
		}
		res.CityLine[c.ID] = enabled(flags.Cities, c.ID) && enabled(flags.Provinces, p.ID)
	}
	for _, b := range snap.Barangays {
		if b.ParentID == "" || !b.HasCoords {
			continue
		}
		c, ok := cities[b.ParentID]
		if !ok || !c.HasCoords {
			continue
		}
		res.BarangayLine[b.ID] = enabled(flags.Barangays, b.ID) && enabled(flags.Cities, c.ID)
	}
	return res
}

func enabled(m map[string]bool, id string) bool {
	v, ok := m[id]
	return !ok || v
}

// IconKind selects the marker icon for a node.
type IconKind string

const (
	IconNormal IconKind = "normal"
	IconGreyed IconKind = "greyed"
)

// Icon styles a marker from the node's own flag alone. Ancestors and
// descendants never influence it.
func Icon(enabled bool) IconKind {
	if enabled {
		return IconNormal
	}
	return IconGreyed
}
