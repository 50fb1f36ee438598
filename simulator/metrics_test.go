package simulator

import (
	"context"
	"fmt"
	"testing"

	"github.com/etnz/portfolio-dashboard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{&ConfigurationError{Reason: "x"}, OutcomeConfiguration},
		{fmt.Errorf("wrapped: %w", &TransportError{Err: context.Canceled}), OutcomeTransport},
		{&SchemaError{Path: "$"}, OutcomeSchema},
		{ErrEmptyResponse, OutcomeEmpty},
		{fmt.Errorf("other"), OutcomeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "Outcome(%v)", tt.err)
	}
}

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	fail := false
	s := Instrument(Func(func(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error) {
		if fail {
			return nil, ErrEmptyResponse
		}
		return nil, nil
	}), reg)

	ctx := context.Background()
	_, _ = s.Simulate(ctx, portfolio.DefaultPortfolio())
	_, _ = s.Simulate(ctx, portfolio.DefaultPortfolio())
	fail = true
	_, _ = s.Simulate(ctx, portfolio.DefaultPortfolio())

	assert.Equal(t, 2.0, testutil.ToFloat64(s.calls.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.calls.WithLabelValues(OutcomeEmpty)))
	assert.Equal(t, 1, testutil.CollectAndCount(s.duration))
}
