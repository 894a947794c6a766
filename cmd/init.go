package cmd

import (
	"github.com/spf13/cobra"
	"github.com/terramesa/uplinkmap/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize uplinkmap configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure uplinkmap for your dataset and generates a .uplinkmap.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
