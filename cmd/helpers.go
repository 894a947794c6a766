package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/terramesa/uplinkmap/internal/config"
	"github.com/terramesa/uplinkmap/internal/dataset"
	"github.com/terramesa/uplinkmap/internal/db"
	"github.com/terramesa/uplinkmap/internal/geoindex"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/search"
	"github.com/terramesa/uplinkmap/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `uplinkmap init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadTables discovers and reads the three configured tables.
func loadTables(ctx context.Context, cfg *config.Config) (*dataset.Tables, dataset.Sources, error) {
	srcs, err := dataset.Discover(cfg.DataDir, dataset.Patterns{
		Provinces: cfg.Provinces,
		Cities:    cfg.Cities,
		Barangays: cfg.Barangays,
	})
	if err != nil {
		return nil, dataset.Sources{}, fmt.Errorf("discovering tables: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Provinces: %s\n", srcs.Provinces)
		fmt.Fprintf(os.Stderr, "Cities:    %s\n", srcs.Cities)
		fmt.Fprintf(os.Stderr, "Barangays: %s\n", srcs.Barangays)
	}

	tables, err := dataset.Load(ctx, srcs)
	if err != nil {
		return nil, dataset.Sources{}, err
	}
	return tables, srcs, nil
}

// workingSet is one loaded dataset plus every index built over it.
// This is the shared version used by the serve, export, search and mcp
// commands.
type workingSet struct {
	nodes    []hierarchy.Node
	stats    dataset.Stats
	index    *hierarchy.Index
	state    *hierarchy.State
	searcher *search.Index
	locator  *geoindex.Index
	store    *store.Store
	database *db.DB
	fromDB   bool
}

// openWorkingSet loads nodes from a previous import when the database
// holds one, falling back to the CSV sources, and builds the lookup
// indexes. The caller owns Close.
func openWorkingSet(ctx context.Context, cfg *config.Config) (*workingSet, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	ws := &workingSet{database: database, store: store.NewStore(database)}

	count, err := ws.store.CountNodes(ctx)
	if err != nil {
		database.Close()
		return nil, err
	}

	if count > 0 {
		ws.nodes, err = ws.store.LoadNodes(ctx)
		if err != nil {
			database.Close()
			return nil, err
		}
		ws.fromDB = true
	} else {
		tables, _, err := loadTables(ctx, cfg)
		if err != nil {
			database.Close()
			return nil, err
		}
		ws.nodes = hierarchy.FromTables(tables)
		ws.stats = tables.Stats
		geoindex.Stamp(ws.nodes)
	}

	ws.index = hierarchy.Build(ws.nodes)
	ws.state = hierarchy.NewState(ws.index)
	ws.searcher = search.New(ws.nodes, cfg.FuzzyDistance)
	ws.locator = geoindex.New(ws.nodes)
	return ws, nil
}

// Close releases the database handle.
func (ws *workingSet) Close() error {
	return ws.database.Close()
}

// source names where the nodes came from, for startup banners.
func (ws *workingSet) source(cfg *config.Config) string {
	if ws.fromDB {
		return cfg.DBPath
	}
	return cfg.DataDir
}
