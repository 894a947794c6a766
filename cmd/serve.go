package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/terramesa/uplinkmap/internal/mapapi"
	"github.com/terramesa/uplinkmap/internal/server"
	"github.com/terramesa/uplinkmap/internal/webui"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the map server",
	Long:  `Starts the uplinkmap web server: the interactive map page, the node API and a WebSocket that pushes recomputed line visibility to every connected client.`,
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

		port := cfg.Port
		if servePort > 0 {
			port = servePort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: cfg.AllowAllOrigins,
		})

		api := mapapi.New(ws.index, ws.state, ws.searcher, ws.locator, ws.store, ws.stats)
		api.RegisterRoutes(srv.Router())

		ui, err := webui.New(cfg)
		if err != nil {
			return fmt.Errorf("building map page: %w", err)
		}
		ui.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		counts := ws.index.Counts()
		fmt.Fprintf(os.Stderr, "uplinkmap v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Source: %s\n", ws.source(cfg))
		fmt.Fprintf(os.Stderr, "  Nodes:  %d provinces, %d cities, %d barangays\n",
			counts.Provinces, counts.Cities, counts.Barangays)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
