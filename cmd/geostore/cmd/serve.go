/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/geostore/pkg/api"
	"github.com/ssargent/geostore/pkg/config"
	"github.com/ssargent/geostore/pkg/di"
	"github.com/ssargent/geostore/pkg/index"
	"github.com/ssargent/geostore/pkg/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the geostore REST API server. The index is loaded into memory at
startup; restart the server after rebuilding the store or index.

When the configuration carries an API key, requests under /api/v1 must send it
in the X-API-Key header.

Examples:
  geostore serve
  geostore serve --port 9000 --bind 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServe(ctx, container, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
}

func runServe(ctx context.Context, c *di.Container, cfg *config.Config) error {
	policy, err := cfg.LookupDecodePolicy()
	if err != nil {
		return err
	}

	records, err := c.GetCatalogOpener().OpenCatalog(index.LookupConfig{
		IndexPath:       cfg.IndexPath(),
		StorePath:       cfg.StorePath(),
		DropUndecodable: policy == store.DropRecord,
	})
	if err != nil {
		return fmt.Errorf("open catalog (run 'geostore build' first): %w", err)
	}

	starter := c.GetServerFactory().CreateServerStarter()
	return starter.StartServer(ctx, records, api.ServerConfig{
		Port:   cfg.Server.Port,
		Bind:   cfg.Server.Bind,
		APIKey: cfg.Security.APIKey,
		Logger: c.GetLogger(),
	})
}
