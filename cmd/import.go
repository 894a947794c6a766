package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/terramesa/uplinkmap/internal/db"
	"github.com/terramesa/uplinkmap/internal/geoindex"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
	"github.com/terramesa/uplinkmap/internal/progress"
	"github.com/terramesa/uplinkmap/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the CSV tables into the local database",
	Long:  `Reads the configured CSV tables, joins them into nodes and replaces the stored dataset, so serve can run without the source files.`,
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tables, _, err := loadTables(ctx, cfg)
	if err != nil {
		return err
	}

	nodes := hierarchy.FromTables(tables)
	geoindex.Stamp(nodes)

	if len(nodes) == 0 {
		fmt.Println("No rows survived the load; nothing to import.")
		return nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	st := store.NewStore(database)

	// Progress ticks once per inserted node.
	reporter := progress.NewReporter()
	reporter.Start(len(nodes))
	processed := 0
	err = st.ReplaceNodes(ctx, nodes, func() {
		processed++
		reporter.Update(processed, nodes[processed-1].Name)
	})
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("importing nodes: %w", err)
	}

	rec := &store.ImportRecord{
		Provinces: tables.Stats.Provinces.Kept,
		Cities:    tables.Stats.Cities.Kept,
		Barangays: tables.Stats.Barangays.Kept,
		Dropped:   tables.Stats.Dropped(),
		Source:    cfg.DataDir,
	}
	if err := st.RecordImport(ctx, rec); err != nil {
		return err
	}

	duration := time.Since(start)
	fmt.Println()
	fmt.Println("Import complete!")
	fmt.Printf("  Provinces: %d\n", tables.Stats.Provinces.Kept)
	fmt.Printf("  Cities:    %d\n", tables.Stats.Cities.Kept)
	fmt.Printf("  Barangays: %d\n", tables.Stats.Barangays.Kept)
	if d := tables.Stats.Dropped(); d > 0 {
		fmt.Printf("  Dropped:   %d (missing keys or repeated ids)\n", d)
	}
	fmt.Printf("  Duration:  %s\n", duration.Round(time.Millisecond))
	fmt.Printf("  Database:  %s\n", cfg.DBPath)

	return nil
}
