package simulator

import (
	"context"
	"errors"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of the simulation metrics.
const (
	OutcomeSuccess       = "success"
	OutcomeConfiguration = "configuration_error"
	OutcomeTransport     = "transport_error"
	OutcomeSchema        = "schema_error"
	OutcomeEmpty         = "empty_response"
	OutcomeOther         = "error"
)

// Outcome classifies err into one of the Outcome labels.
func Outcome(err error) string {
	var (
		conf      *ConfigurationError
		transport *TransportError
		schema    *SchemaError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &conf):
		return OutcomeConfiguration
	case errors.Is(err, ErrEmptyResponse):
		return OutcomeEmpty
	case errors.As(err, &schema):
		return OutcomeSchema
	case errors.As(err, &transport):
		return OutcomeTransport
	}
	return OutcomeOther
}

// Instrumented is a Simulator reporting Prometheus metrics.
type Instrumented struct {
	next     Simulator
	calls    *prometheus.CounterVec
	duration prometheus.Histogram
}

// Instrument wraps next and registers its metrics into reg.
func Instrument(next Simulator, reg prometheus.Registerer) *Instrumented {
	s := &Instrumented{
		next: next,
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_simulations_total",
				Help: "Total number of portfolio simulations by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portfolio_simulation_duration_seconds",
				Help:    "Portfolio simulation duration in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
			},
		),
	}
	reg.MustRegister(s.calls, s.duration)
	return s
}

func (s *Instrumented) Simulate(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error) {
	start := time.Now()
	stocks, err := s.next.Simulate(ctx, cfg)
	s.duration.Observe(time.Since(start).Seconds())
	s.calls.WithLabelValues(Outcome(err)).Inc()
	return stocks, err
}
