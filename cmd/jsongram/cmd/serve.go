package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/reoring/jsongram/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve exposes compilation and grammar checks over HTTP.

Endpoints:
  - POST /v1/compile  {"name", "sample" | "shape", "keys", "separator"}
  - POST /v1/check    {"grammar", "input", "rule"}
  - GET  /healthz
  - GET  /metrics     (when server.metrics is enabled)

Example:
  jsongram serve --addr :9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Override listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("serve")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, log, reg).ListenAndServe(ctx)
}
