package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terramesa/uplinkmap/internal/dataset"
	"github.com/terramesa/uplinkmap/internal/hierarchy"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configured tables without serving",
	Long:  `Loads the three CSV tables, reports dropped rows, unresolved parents and unplaced nodes, and fails when nothing serveable remains.`,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tables, srcs, err := loadTables(ctx, cfg)
	if err != nil {
		return err
	}

	nodes := hierarchy.FromTables(tables)
	index := hierarchy.Build(nodes)
	counts := index.Counts()

	fmt.Println("Table check")
	fmt.Println("===========")
	printTableStats("Provinces", srcs.Provinces, tables.Stats.Provinces)
	printTableStats("Cities", srcs.Cities, tables.Stats.Cities)
	printTableStats("Barangays", srcs.Barangays, tables.Stats.Barangays)

	var unplaced int
	for _, n := range nodes {
		if !n.HasCoords() {
			unplaced++
		}
	}

	var cityLines, barangayLines int
	for _, l := range index.Links() {
		switch l.Kind {
		case hierarchy.KindCity:
			cityLines++
		case hierarchy.KindBarangay:
			barangayLines++
		}
	}

	tree := index.Tree()

	fmt.Println()
	fmt.Printf("  Drawable lines:       %d city, %d barangay\n", cityLines, barangayLines)
	fmt.Printf("  Unplaced nodes:       %d\n", unplaced)
	fmt.Printf("  Unassigned cities:    %d\n", len(tree.UnassignedCities))
	fmt.Printf("  Unassigned barangays: %d\n", len(tree.UnassignedBarangays))

	if counts.Provinces+counts.Cities+counts.Barangays == 0 {
		return fmt.Errorf("no nodes survived the load")
	}

	fmt.Println()
	fmt.Println("Tables are serveable.")
	return nil
}

func printTableStats(label, src string, s dataset.KindStats) {
	fmt.Printf("  %-10s %s\n", label+":", src)
	fmt.Printf("    read %d, kept %d, missing key %d, duplicate %d\n",
		s.Read, s.Kept, s.MissingKey, s.Duplicate)
}
