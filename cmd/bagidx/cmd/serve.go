package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/bagindex/pkg/api"
)

func newServeCmd() *cobra.Command {
	var (
		bind string
		port int
	)

	serveCmd := &cobra.Command{
		Use:   "serve <bag>",
		Short: "Serve the index of a bag over HTTP",
		Long: `Scan a bag once and serve its summary and per-connection index entries as
a JSON API. Prometheus metrics are served on /metrics unless disabled in the
config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bind") {
				a.config.Server.Bind = bind
			}
			if cmd.Flags().Changed("port") {
				a.config.Server.Port = port
			}
			if err := a.config.Validate(); err != nil {
				return err
			}

			summary, err := scanFile(a, args[0])
			if err != nil {
				return err
			}

			server := api.NewServer(summary, api.ServerConfig{
				Addr:          a.config.Server.Addr(),
				Source:        args[0],
				EnableMetrics: a.config.Metrics.Enabled,
			}, a.metrics, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx, a.registry)
		},
	}

	serveCmd.Flags().StringVar(&bind, "bind", "", "Address to bind to (default from config, 127.0.0.1)")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config, 9300)")
	return serveCmd
}
