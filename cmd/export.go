package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/terramesa/uplinkmap/internal/geojson"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dataset as GeoJSON",
	Long:  `Writes every placed node and every connector line as a GeoJSON FeatureCollection, with enabled state and line visibility in feature properties.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ws, err := openWorkingSet(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer ws.Close()

		fc := geojson.Encode(ws.index, ws.state.Flags(), ws.state.Visibility())

		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding GeoJSON: %w", err)
		}
		data = append(data, '\n')

		if exportOutput == "-" {
			_, err := os.Stdout.Write(data)
			return err
		}

		if err := os.WriteFile(exportOutput, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		fmt.Printf("Exported %d features to %s\n", fc.Count, exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "uplinkmap.geojson", "output file path, or - for stdout")
	rootCmd.AddCommand(exportCmd)
}
