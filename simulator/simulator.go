// Package simulator produces simulated portfolios.
//
// The real simulator asks a generative model (Gemini) to invent plausible
// prices for a configuration. Its answers are not deterministic: two calls with
// the same configuration usually return different figures. Fixed and Replay
// provide deterministic simulators for tests and offline use.
package simulator

import (
	"context"
	"fmt"
	"os"

	"github.com/etnz/portfolio-dashboard"
)

// Simulator simulates the holdings of a portfolio configuration.
type Simulator interface {
	Simulate(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error)
}

// Func adapts a function to the Simulator interface.
type Func func(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error)

func (f Func) Simulate(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error) {
	return f(ctx, cfg)
}

// Fixed always returns the same stocks, or Err when set.
type Fixed struct {
	Stocks []portfolio.StockData
	Err    error
}

func (f Fixed) Simulate(ctx context.Context, _ portfolio.PortfolioConfig) ([]portfolio.StockData, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]portfolio.StockData(nil), f.Stocks...), nil
}

// Replay returns the stocks recorded in a JSON file, in the simulator payload
// format. The file is read at each call so it can be edited between refreshes.
type Replay struct {
	Path string
}

func (r Replay) Simulate(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	payload, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("cannot read recording %q: %w", r.Path, err)}
	}
	return Parse(payload, cfg.Currency)
}
