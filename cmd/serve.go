package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/server"
	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	addr      string
	every     string
	replay    string
	noInitial bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `folio serve [-addr <host:port>] [-every <schedule>] [-replay <file>] [-no-initial]

  Serves the dashboard page, its JSON API and Prometheus metrics. The
  portfolio is simulated at startup, then on demand and on the refresh
  schedule if any.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Defaults to server.host:server.port.")
	f.StringVar(&c.every, "every", "", "Auto refresh schedule, e.g. '@every 15m' or a cron spec. Defaults to refresh.schedule.")
	f.StringVar(&c.replay, "replay", "", "Read the simulated stocks from a JSON recording instead of calling Gemini.")
	f.BoolVar(&c.noInitial, "no-initial", false, "Do not simulate the portfolio at startup.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitUsageError
	}
	log := newLogger(settings)
	purchase, valuation, _ := settings.Simulation.Dates()

	addr := c.addr
	if addr == "" {
		addr = settings.Server.Addr()
	}
	schedule := c.every
	if schedule == "" {
		schedule = settings.Refresh.Schedule
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sim, model := newSimulator(settings, c.replay, log, reg)
	store := dashboard.New(sim, settings.Portfolio.PortfolioConfig(), log)
	log.Info().Str("model", model).Str("purchase", purchase.String()).Str("valuation", valuation.String()).Msg("Dashboard ready")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:           addr,
		Dashboard:      store,
		Purchase:       purchase,
		Valuation:      valuation,
		RefreshTimeout: settings.Refresh.Timeout,
		Registry:       reg,
		Log:            log,
	})

	if schedule != "" {
		auto, err := dashboard.NewAutoRefresh(store, schedule, settings.Refresh.Timeout, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		auto.Start()
		defer auto.Stop()
	}

	if !c.noInitial {
		go func() {
			rctx, cancel := withTimeout(ctx, settings.Refresh.Timeout)
			defer cancel()
			// the outcome is in the store, and logged
			_ = store.Refresh(rctx)
		}()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()
	fmt.Fprintf(stdout, "Serving the dashboard on http://%s\n", addr)

	select {
	case err := <-errc:
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
