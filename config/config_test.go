package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables a developer machine may carry.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FOLIO_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY", "FOLIO_SERVER_PORT", "FOLIO_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "localhost:8080", s.Server.Addr())
	assert.Equal(t, simulator.DefaultModel, s.Gemini.Model)
	assert.Equal(t, 2*time.Minute, s.Refresh.Timeout)
	assert.Empty(t, s.Refresh.Schedule)

	purchase, valuation, err := s.Simulation.Dates()
	require.NoError(t, err)
	assert.Equal(t, portfolio.PurchaseDate, purchase)
	assert.Equal(t, portfolio.ValuationDate, valuation)

	cfg := s.Portfolio.PortfolioConfig()
	assert.Equal(t, portfolio.DefaultPortfolio().Tickers(), cfg.Tickers())
	assert.True(t, cfg.TotalInvestment.Equal(portfolio.M(100000, "INR")))
	assert.NoError(t, s.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "folio.yaml", `
server:
  port: 9090
gemini:
  model: gemini-test
refresh:
  schedule: "@every 5m"
  timeout: 30s
portfolio:
  currency: usd
  total_investment: 5000
  stocks:
    - ticker: NASDAQ:AAPL
      target_amount: 1500
    - ticker: " nyse:ibm "
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, s.Path)
	assert.Equal(t, 9090, s.Server.Port)
	assert.Equal(t, "localhost", s.Server.Host, "defaults still apply")
	assert.Equal(t, "gemini-test", s.Gemini.Model)
	assert.Equal(t, "@every 5m", s.Refresh.Schedule)
	assert.Equal(t, 30*time.Second, s.Refresh.Timeout)

	cfg := s.Portfolio.PortfolioConfig()
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, []string{"NASDAQ:AAPL", "nyse:ibm"}, cfg.Tickers())
	require.True(t, cfg.Stocks[0].HasTarget())
	assert.True(t, cfg.Stocks[0].Target.Equal(portfolio.M(1500, "USD")))
	assert.False(t, cfg.Stocks[1].HasTarget())
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOLIO_SERVER_PORT", "7070")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")
	t.Setenv("API_KEY", "from-api-key")

	s, err := Load(writeFile(t, "folio.yaml", "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, s.Server.Port)
	assert.Equal(t, "debug", s.Log.Level, "environment overrides the file")
	assert.Equal(t, "from-api-key", s.Gemini.APIKey)

	t.Setenv("GEMINI_API_KEY", "from-gemini-key")
	s, err = Load(writeFile(t, "folio.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, "from-gemini-key", s.Gemini.APIKey, "GEMINI_API_KEY wins over API_KEY")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Simulation.ValuationDate = s.Simulation.PurchaseDate
	s.Server.Port = 70000
	s.Portfolio.Stocks = nil

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be after purchase date")
	assert.Contains(t, err.Error(), "invalid server port 70000")
	assert.Contains(t, err.Error(), "portfolio:")

	s = Default()
	s.Simulation.PurchaseDate = "yesterday"
	assert.ErrorContains(t, s.Validate(), "invalid purchase date")
}

func TestWrite(t *testing.T) {
	clearEnv(t)
	s := Default()
	s.Gemini.APIKey = "secret"
	s.Refresh.Schedule = "@hourly"
	target := 2500.0
	s.Portfolio.Stocks[0].TargetAmount = &target

	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, Write(path, s))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "@hourly", got.Refresh.Schedule)
	assert.Equal(t, s.Refresh.Timeout, got.Refresh.Timeout)
	cfg := got.Portfolio.PortfolioConfig()
	require.True(t, cfg.Stocks[0].HasTarget())
	assert.True(t, cfg.Stocks[0].Target.Equal(portfolio.M(2500, "INR")))
	assert.Len(t, cfg.Stocks, len(portfolio.DefaultPortfolio().Stocks))
}

func TestNewPortfolioSettings(t *testing.T) {
	target := portfolio.M(1500, "USD")
	cfg := portfolio.PortfolioConfig{Currency: "USD", TotalInvestment: portfolio.M(5000, "USD")}.
		WithStock("NASDAQ:AAPL", &target).
		WithStock("NYSE:IBM", nil)

	s := NewPortfolioSettings(cfg)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, 5000.0, s.TotalInvestment)
	require.Len(t, s.Stocks, 2)
	require.NotNil(t, s.Stocks[0].TargetAmount)
	assert.Equal(t, 1500.0, *s.Stocks[0].TargetAmount)
	assert.Nil(t, s.Stocks[1].TargetAmount)

	back := s.PortfolioConfig()
	assert.Equal(t, cfg.Tickers(), back.Tickers())
	assert.True(t, back.TotalInvestment.Equal(cfg.TotalInvestment))
	assert.True(t, back.Stocks[0].Target.Equal(target))
}
