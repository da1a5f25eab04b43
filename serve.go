package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"omnisearch/internal/api"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Long: `serve exposes GET /search?q=<query>, GET /health and GET /metrics.
The port defaults to PORT, or 3000.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			gin.SetMode(gin.ReleaseMode)

			a := newApp(cfg, logger, prometheus.NewRegistry())
			handler := api.NewHandler(a.search, logger.Named("api"))
			router := api.NewRouter(handler, a.metrics.Handler(), logger.Named("http"))

			return api.NewServer(cfg.Server.Port, router, logger).Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 3000, "Port to listen on (overrides PORT)")
	return cmd
}
