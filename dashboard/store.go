// Package dashboard holds the state of the portfolio dashboard.
//
// The state (configuration, simulated stocks and loading status) lives in a
// single Store owned by the application. It only changes through discrete
// transitions:
//
//	idle -> loading -> success | error
//
// and every transition is committed atomically. Refreshes may overlap: each one
// gets a generation number and only the latest issued refresh is allowed to
// commit its result, older ones are discarded when they complete.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/logger"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by Refresh when a newer refresh was issued before
// this one completed. Its result has been discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// ErrInvalidConfig wraps validation failures of a configuration to save.
var ErrInvalidConfig = errors.New("invalid portfolio configuration")

// State is a snapshot of the dashboard. States are values: slices are never
// modified once committed and must not be modified by readers.
type State struct {
	Version    uint64                    `json:"version"`    // incremented at each commit
	Generation uint64                    `json:"generation"` // refresh the state is about
	RequestID  string                    `json:"requestId,omitempty"`
	Status     Status                    `json:"status"`
	Err        string                    `json:"error,omitempty"`
	Config     portfolio.PortfolioConfig `json:"config"`
	Stocks     []portfolio.StockData     `json:"stocks"`
	Summary    portfolio.Summary         `json:"summary"`
	UpdatedAt  time.Time                 `json:"updatedAt,omitzero"` // last successful refresh
}

// Positions returns the per-row figures of the current stocks.
func (s State) Positions() []portfolio.Position { return portfolio.Positions(s.Stocks) }

// HasData reports whether there are stocks to display.
func (s State) HasData() bool { return len(s.Stocks) > 0 }

// Store holds the dashboard State.
type Store struct {
	sim simulator.Simulator
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	state   State
	latest  uint64 // generation of the last issued refresh
	subs    map[int]chan State
	nextSub int
}

// New creates a Store in the Idle state for cfg.
func New(sim simulator.Simulator, cfg portfolio.PortfolioConfig, log zerolog.Logger) *Store {
	cfg = cfg.Normalize()
	return &Store{
		sim: sim,
		log: logger.Component(log, "dashboard"),
		now: time.Now,
		state: State{
			Status:  Idle,
			Config:  cfg,
			Summary: portfolio.Summarize(cfg.Currency, nil),
		},
		subs: make(map[int]chan State),
	}
}

// Snapshot returns the current State.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// commit replaces the state and notifies subscribers. s.mu must be held.
func (s *Store) commit(next State) {
	next.Version = s.state.Version + 1
	s.state = next
	for _, ch := range s.subs {
		// latest wins: a slow subscriber only misses intermediate states.
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}

// Refresh simulates the current configuration and commits the result.
//
// The store is Loading while the simulator runs; previous stocks stay
// available. On failure the status becomes Error and the stocks are left
// untouched. If another refresh was issued meanwhile, the result is dropped and
// ErrSuperseded is returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.latest++
	gen := s.latest
	cfg := s.state.Config
	next := s.state
	next.Generation = gen
	next.RequestID = uuid.NewString()
	next.Status = Loading
	next.Err = ""
	s.commit(next)
	s.mu.Unlock()

	log := s.log.With().Uint64("generation", gen).Str("request_id", next.RequestID).Logger()
	log.Info().Int("stocks", len(cfg.Stocks)).Msg("Refreshing simulation")

	start := s.now()
	stocks, err := s.sim.Simulate(ctx, cfg)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.latest {
		log.Warn().Uint64("latest", s.latest).Msg("Discarding stale simulation")
		return ErrSuperseded
	}

	next = s.state
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("Simulation failed")
		next.Status = Error
		next.Err = err.Error()
		s.commit(next)
		return err
	}

	next.Status = Success
	next.Err = ""
	next.Stocks = stocks
	next.Summary = portfolio.Summarize(cfg.Currency, stocks)
	next.UpdatedAt = s.now()
	s.commit(next)
	log.Info().Int("stocks", len(stocks)).Dur("elapsed", elapsed).Msg("Simulation committed")
	return nil
}

// Save replaces the configuration and refreshes the simulation.
// An invalid configuration is rejected with ErrInvalidConfig and the state is left untouched.
func (s *Store) Save(ctx context.Context, cfg portfolio.PortfolioConfig) error {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s.mu.Lock()
	next := s.state
	next.Config = cfg
	s.commit(next)
	s.mu.Unlock()

	s.log.Info().Strs("tickers", cfg.Tickers()).Msg("Configuration saved")
	return s.Refresh(ctx)
}

// Subscribe returns a channel receiving every committed State, and a function
// to stop the subscription. A slow subscriber only gets the latest State.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}
