package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plangraph/internal/server"
	"github.com/matzehuels/plangraph/pkg/observability"
	"github.com/matzehuels/plangraph/pkg/observability/promhooks"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP evaluation API",
		Long: `Serve planning graph evaluation over HTTP.

  POST /v1/evaluate   evaluate a JSON problem
  POST /v1/render     render its planning graph
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics`,
		Example: `  plangraph serve --addr :9000
  curl -d '{"problem": {...}}' localhost:9000/v1/evaluate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var metrics http.Handler
			if !noMetrics {
				m := promhooks.New()
				observability.SetGraphHooks(m)
				observability.SetCacheHooks(m)
				observability.SetHTTPHooks(m)
				defer observability.Reset()
				metrics = m.Handler()
			}

			printInfo("Serving on %s", addr)
			return server.New(runner, metrics, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}
