// Package mapapi exposes the working set over HTTP: the bootstrap
// snapshot the map page loads, toggle and reset endpoints, name search,
// nearest-node lookup and GeoJSON export, plus a WebSocket that pushes
// the recomputed line visibility to every client after each change.
package mapapi

import (
	"github.com/go-chi/chi/v5"

	"github.com/terramesa/uplinkmap/internal/dataset"
	"github.com/terramesa/uplinkmap/internal/geoindex"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/search"
	"github.com/terramesa/uplinkmap/internal/store"
)

// API serves the node hierarchy, toggle state and lookup endpoints the
// map page drives.
type API struct {
	index    *hierarchy.Index
	state    *hierarchy.State
	searcher *search.Index
	locator  *geoindex.Index
	imports  *store.Store // nil when serving straight from CSV files
	stats    dataset.Stats
	hub      *hub
}

// New creates the API around an indexed dataset.
func New(ix *hierarchy.Index, state *hierarchy.State, searcher *search.Index, locator *geoindex.Index, imports *store.Store, stats dataset.Stats) *API {
	return &API{
		index:    ix,
		state:    state,
		searcher: searcher,
		locator:  locator,
		imports:  imports,
		stats:    stats,
		hub:      newHub(),
	}
}

// RegisterRoutes mounts all map API routes onto the given router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/api/snapshot", a.handleSnapshot)
	r.Get("/api/nodes", a.handleNodes)
	r.Get("/api/nodes/{kind}/{id}", a.handleNode)
	r.Post("/api/nodes/{kind}/{id}/enabled", a.handleSetEnabled)
	r.Post("/api/reset", a.handleReset)
	r.Get("/api/visibility", a.handleVisibility)
	r.Get("/api/search", a.handleSearch)
	r.Get("/api/nearest", a.handleNearest)
	r.Get("/api/stats", a.handleStats)
	r.Get("/api/export.geojson", a.handleExport)
	r.Get("/ws", a.handleWebSocket)
}
