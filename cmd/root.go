package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "uplinkmap",
	Short: "Interactive map server for province, city and barangay tables",
	Long: `uplinkmap loads three CSV tables (provinces, cities, barangays), joins
them into a hierarchy and serves an interactive map where every node
can be toggled on or off. Markers follow each node's own flag;
connector lines are shown only while both endpoints are enabled.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".uplinkmap.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
