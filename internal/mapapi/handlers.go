package mapapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/terramesa/uplinkmap/internal/dataset"
	"github.com/terramesa/uplinkmap/internal/geoindex"
	"github.com/terramesa/uplinkmap/internal/geojson"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/store"
	"github.com/terramesa/uplinkmap/internal/visibility"
)

// nodeState is one node along with its current toggle styling.
type nodeState struct {
	hierarchy.Node
	Enabled bool                `json:"enabled"`
	Icon    visibility.IconKind `json:"icon"`
}

// snapshotResponse is the JSON bootstrap the map page loads first.
type snapshotResponse struct {
	Counts     hierarchy.Counts  `json:"counts"`
	Tree       hierarchy.Tree    `json:"tree"`
	Markers    []nodeState       `json:"markers"`
	Links      []hierarchy.Link  `json:"links"`
	Flags      visibility.Flags  `json:"flags"`
	Visibility visibility.Result `json:"visibility"`
}

// nodesResponse is the flat node list.
type nodesResponse struct {
	Nodes []nodeState `json:"nodes"`
}

// toggleResponse reports the state after one node's flag changed.
type toggleResponse struct {
	Kind       hierarchy.Kind      `json:"kind"`
	ID         string              `json:"id"`
	Enabled    bool                `json:"enabled"`
	Icon       visibility.IconKind `json:"icon"`
	Visibility visibility.Result   `json:"visibility"`
}

// visibilityResponse is the current flag set and line visibility.
type visibilityResponse struct {
	Flags      visibility.Flags  `json:"flags"`
	Visibility visibility.Result `json:"visibility"`
}

// searchResponse is the JSON response for the search endpoint.
type searchResponse struct {
	Query   string      `json:"query"`
	Results []nodeState `json:"results"`
}

// nearestResponse is the JSON response for the nearest endpoint.
type nearestResponse struct {
	Match geoindex.Match `json:"match"`
}

// statsResponse summarizes the working set and the load that built it.
type statsResponse struct {
	Counts     hierarchy.Counts    `json:"counts"`
	Placed     int                 `json:"placed"`
	Links      int                 `json:"links"`
	Load       dataset.Stats       `json:"load"`
	LastImport *store.ImportRecord `json:"last_import,omitempty"`
}

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	flags := a.state.Flags()

	markers := a.markers(flags)
	links := a.index.Links()
	if links == nil {
		links = []hierarchy.Link{}
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Counts:     a.index.Counts(),
		Tree:       a.index.Tree(),
		Markers:    markers,
		Links:      links,
		Flags:      flags,
		Visibility: a.state.Visibility(),
	})
}

func (a *API) handleNodes(w http.ResponseWriter, r *http.Request) {
	flags := a.state.Flags()

	all := a.index.All()
	nodes := make([]nodeState, 0, len(all))
	for _, n := range all {
		nodes = append(nodes, stateFor(n, flags))
	}

	writeJSON(w, http.StatusOK, nodesResponse{Nodes: nodes})
}

func (a *API) handleNode(w http.ResponseWriter, r *http.Request) {
	kind, ok := hierarchy.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown kind: " + chi.URLParam(r, "kind")})
		return
	}
	n, ok := a.index.Node(kind, chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown node: " + string(kind) + "/" + chi.URLParam(r, "id")})
		return
	}

	writeJSON(w, http.StatusOK, stateFor(n, a.state.Flags()))
}

func (a *API) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	kind, ok := hierarchy.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown kind: " + chi.URLParam(r, "kind")})
		return
	}
	id := chi.URLParam(r, "id")

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": `body must be {"enabled": true|false}`})
		return
	}

	res, ok := a.state.SetEnabled(kind, id, *body.Enabled)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown node: " + string(kind) + "/" + id})
		return
	}
	a.broadcastState(res)

	writeJSON(w, http.StatusOK, toggleResponse{
		Kind:       kind,
		ID:         id,
		Enabled:    *body.Enabled,
		Icon:       visibility.Icon(*body.Enabled),
		Visibility: res,
	})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	res := a.state.Reset()
	a.broadcastState(res)

	writeJSON(w, http.StatusOK, visibilityResponse{
		Flags:      a.state.Flags(),
		Visibility: res,
	})
}

func (a *API) handleVisibility(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, visibilityResponse{
		Flags:      a.state.Flags(),
		Visibility: a.state.Visibility(),
	})
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	var kind hierarchy.Kind
	if ks := r.URL.Query().Get("kind"); ks != "" {
		k, ok := hierarchy.ParseKind(ks)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown kind: " + ks})
			return
		}
		kind = k
	}

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		n, err := strconv.Atoi(ls)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a number"})
			return
		}
		limit = n
	}

	flags := a.state.Flags()
	hits := a.searcher.Search(q, kind, limit)
	results := make([]nodeState, 0, len(hits))
	for _, n := range hits {
		results = append(results, stateFor(n, flags))
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: q, Results: results})
}

func (a *API) handleNearest(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lng must be a number"})
		return
	}

	match, ok := a.locator.Nearest(lat, lng)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no node within range"})
		return
	}

	writeJSON(w, http.StatusOK, nearestResponse{Match: match})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	placed := 0
	for _, n := range a.index.All() {
		if n.HasCoords() {
			placed++
		}
	}

	resp := statsResponse{
		Counts: a.index.Counts(),
		Placed: placed,
		Links:  len(a.index.Links()),
		Load:   a.stats,
	}

	if a.imports != nil {
		rec, err := a.imports.LastImport(r.Context())
		switch {
		case err == nil:
			resp.LastImport = rec
		case errors.Is(err, sql.ErrNoRows):
			// nothing imported yet
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	fc := geojson.Encode(a.index, a.state.Flags(), a.state.Visibility())

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(fc)
}

// markers lists the placeable nodes with their current styling.
func (a *API) markers(flags visibility.Flags) []nodeState {
	markers := []nodeState{}
	for _, n := range a.index.All() {
		if !n.HasCoords() {
			continue
		}
		markers = append(markers, stateFor(n, flags))
	}
	return markers
}

// stateFor styles one node from its own flag. Missing flags count as
// enabled.
func stateFor(n hierarchy.Node, flags visibility.Flags) nodeState {
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
	enabled := !ok || v
	return nodeState{Node: n, Enabled: enabled, Icon: visibility.Icon(enabled)}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
