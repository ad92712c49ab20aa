package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/corkboard/internal/metrics"
	"github.com/matzehuels/corkboard/pkg/server"
	"github.com/matzehuels/corkboard/pkg/store"
)

type serveOpts struct {
	addr      string
	noMetrics bool
}

// serveCommand runs the backend API over the configured store.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve board items over HTTP",
		Long: `Serve the items of every board in the configured store:

  GET    /boards/{board}/items
  PUT    /boards/{board}/items
  PUT    /boards/{board}/items/{id}/position
  DELETE /boards/{board}/items/{id}

Prometheus metrics are exposed at /metrics unless disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				return c.runServe(cmd, st, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, st store.Store, opts serveOpts) error {
	cfg := c.config().Server
	addr := cfg.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	sopts := server.Options{
		Rate:            cfg.Rate,
		Burst:           cfg.Burst,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          c.Logger,
	}
	if !cfg.DisableMetrics && !opts.noMetrics {
		m := metrics.New()
		m.Install()
		sopts.Metrics = m.Handler()
		sopts.Middleware = []func(http.Handler) http.Handler{m.Instrument}
	}

	printInfo("Serving %s store on %s", StyleValue.Render(c.config().Store.Driver), StyleNumber.Render(addr))
	return server.New(st, sopts).ListenAndServe(cmd.Context(), addr)
}
