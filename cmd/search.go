package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terramesa/uplinkmap/internal/hierarchy"
)

var searchCmd = &cobra.Command{
	Use:   "search [name]",
	Short: "Search the loaded nodes by name",
	Long:  `Searches provinces, cities and barangays by display name and prints the best matches, fuzziest last.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().String("kind", "", "filter by kind: province, city, barangay")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	queryText := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	kindFilter, _ := cmd.Flags().GetString("kind")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var kind hierarchy.Kind
	if kindFilter != "" {
		k, ok := hierarchy.ParseKind(kindFilter)
		if !ok {
			return fmt.Errorf("unknown kind %q: must be province, city or barangay", kindFilter)
		}
		kind = k
	}

	ws, err := openWorkingSet(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	results := ws.searcher.Search(queryText, kind, limit)
	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Printf("Found %d results:\n\n", len(results))
	for i, n := range results {
		parent := ""
		if p, ok := ws.index.Parent(n); ok {
			parent = fmt.Sprintf(" (in %s)", p.Name)
		}

		location := "not placed"
		if n.HasCoords() {
			location = fmt.Sprintf("%.4f, %.4f", n.Coords.Lat, n.Coords.Lng)
		}

		fmt.Printf("  %d. %s [%s %s]%s\n", i+1, n.Name, n.Kind, n.ID, parent)
		fmt.Printf("     %s\n\n", location)
	}
	return nil
}
