package simulator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/date"
	"github.com/etnz/portfolio-dashboard/logger"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// Generator generates content from a model. *genai.Models implements it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures a Gemini simulator.
type Options struct {
	APIKey    string
	Model     string    // DefaultModel if empty
	Purchase  date.Date // portfolio.PurchaseDate if zero
	Valuation date.Date // portfolio.ValuationDate if zero
	Log       zerolog.Logger

	// Generator replaces the genai client, mostly for tests.
	Generator Generator
}

// Gemini simulates portfolios with a Gemini model. Each Simulate is a single
// GenerateContent call, without retry or caching.
type Gemini struct {
	apiKey    string
	model     string
	purchase  date.Date
	valuation date.Date
	log       zerolog.Logger

	mu  sync.Mutex
	gen Generator
}

// NewGemini creates a Gemini simulator. The client is created on first use,
// so a missing API key is reported by Simulate as a *ConfigurationError.
func NewGemini(opts Options) *Gemini {
	g := &Gemini{
		apiKey:    strings.TrimSpace(opts.APIKey),
		model:     opts.Model,
		purchase:  opts.Purchase,
		valuation: opts.Valuation,
		log:       logger.Component(opts.Log, "gemini"),
		gen:       opts.Generator,
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.purchase.IsZero() {
		g.purchase = portfolio.PurchaseDate
	}
	if g.valuation.IsZero() {
		g.valuation = portfolio.ValuationDate
	}
	return g
}

// Model returns the model name in use.
func (g *Gemini) Model() string { return g.model }

// generator returns the Generator, creating the genai client if needed.
func (g *Gemini) generator(ctx context.Context) (Generator, error) {
	if g.apiKey == "" {
		return nil, &ConfigurationError{Reason: "API key not found, set GEMINI_API_KEY (or API_KEY)"}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != nil {
		return g.gen, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ConfigurationError{Reason: "cannot create Gemini client: " + err.Error()}
	}
	g.gen = client.Models
	return g.gen, nil
}

// Simulate asks the model to simulate cfg and parses its answer.
func (g *Gemini) Simulate(ctx context.Context, cfg portfolio.PortfolioConfig) ([]portfolio.StockData, error) {
	gen, err := g.generator(ctx)
	if err != nil {
		return nil, err
	}

	req := Build(cfg, g.purchase, g.valuation)
	start := time.Now()
	resp, err := gen.GenerateContent(ctx, g.model, genai.Text(req.Task), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	})
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Dur("elapsed", time.Since(start)).Msg("Failed to fetch portfolio data")
		return nil, &TransportError{Err: err}
	}
	if resp == nil {
		return nil, ErrEmptyResponse
	}

	text := resp.Text()
	g.log.Debug().
		Str("model", g.model).
		Int("stocks", len(cfg.Stocks)).
		Int("bytes", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Simulation received")

	stocks, err := Parse([]byte(text), cfg.Currency)
	if err != nil {
		g.log.Error().Err(err).Msg("Failed to parse portfolio data")
		return nil, err
	}
	return stocks, nil
}
