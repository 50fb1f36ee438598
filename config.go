package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/portfolio-dashboard/date"
)

// Default simulation dates: the stocks are bought on PurchaseDate and valued on ValuationDate.
var (
	PurchaseDate  = date.New(2025, 12, 1)
	ValuationDate = date.New(2026, 1, 2)
)

// DefaultCurrency is the currency of the simulated market.
const DefaultCurrency = "INR"

// StockConfig is one line of the portfolio configuration.
type StockConfig struct {
	Ticker string `json:"ticker"` // exchange-qualified, e.g. NSE:RELIANCE
	// Target is the capital to allocate to this stock. nil lets the simulator decide.
	Target *Money `json:"targetAmount,omitempty"`
}

// HasTarget reports whether a target amount was set.
func (s StockConfig) HasTarget() bool { return s.Target != nil }

// PortfolioConfig describes the portfolio to simulate. It is a value: edits
// return a new PortfolioConfig and never modify the receiver's stocks.
type PortfolioConfig struct {
	Currency        string        `json:"currency"`
	TotalInvestment Money         `json:"totalInvestment"`
	Stocks          []StockConfig `json:"stocks"`
}

// DefaultPortfolio returns the configuration used at startup.
func DefaultPortfolio() PortfolioConfig {
	tickers := []string{
		"NSE:TRENT",
		"NSE:RELIANCE",
		"NSE:SBIN",
		"NSE:SAREGAMA",
		"NSE:BHARTIARTL",
		"NSE:TATASTEEL",
		"NSE:HFCL",
		"NSE:JSWSTEEL",
		"NSE:JPPOWER",
	}
	cfg := PortfolioConfig{
		Currency:        DefaultCurrency,
		TotalInvestment: M(100000, DefaultCurrency),
	}
	for _, t := range tickers {
		cfg.Stocks = append(cfg.Stocks, StockConfig{Ticker: t})
	}
	return cfg
}

// Tickers returns the configured tickers in order.
func (c PortfolioConfig) Tickers() []string {
	res := make([]string, 0, len(c.Stocks))
	for _, s := range c.Stocks {
		res = append(res, s.Ticker)
	}
	return res
}

// Index returns the index of the stock with 'ticker', ignoring case, or -1.
func (c PortfolioConfig) Index(ticker string) int {
	ticker = strings.TrimSpace(ticker)
	for i, s := range c.Stocks {
		if strings.EqualFold(s.Ticker, ticker) {
			return i
		}
	}
	return -1
}

// clone returns a copy of c whose stocks can be modified freely.
func (c PortfolioConfig) clone() PortfolioConfig {
	c.Stocks = append([]StockConfig(nil), c.Stocks...)
	return c
}

// Normalize returns a copy of c with trimmed tickers and every amount expressed
// in c's currency (amounts decoded from JSON carry no currency).
func (c PortfolioConfig) Normalize() PortfolioConfig {
	n := c.clone()
	if n.Currency == "" {
		n.Currency = DefaultCurrency
	}
	n.Currency = strings.ToUpper(n.Currency)
	n.TotalInvestment = n.TotalInvestment.WithCurrency(n.Currency)
	for i, s := range n.Stocks {
		n.Stocks[i].Ticker = strings.TrimSpace(s.Ticker)
		if s.Target != nil {
			t := s.Target.WithCurrency(n.Currency)
			n.Stocks[i].Target = &t
		}
	}
	return n
}

// WithTotal returns a copy of c with a different total investment.
func (c PortfolioConfig) WithTotal(total Money) PortfolioConfig {
	n := c.clone()
	n.TotalInvestment = total.WithCurrency(c.Currency)
	return n
}

// WithStock returns a copy of c with a new stock appended.
func (c PortfolioConfig) WithStock(ticker string, target *Money) PortfolioConfig {
	n := c.clone()
	n.Stocks = append(n.Stocks, StockConfig{Ticker: ticker, Target: target})
	return n.Normalize()
}

// WithoutStock returns a copy of c without the stock at index i.
// Out of range indexes return an unchanged copy.
func (c PortfolioConfig) WithoutStock(i int) PortfolioConfig {
	n := c.clone()
	if i < 0 || i >= len(n.Stocks) {
		return n
	}
	n.Stocks = append(n.Stocks[:i], n.Stocks[i+1:]...)
	return n
}

// WithTarget returns a copy of c where the stock at index i targets 'target'.
// A nil target clears it.
func (c PortfolioConfig) WithTarget(i int, target *Money) PortfolioConfig {
	n := c.clone()
	if i < 0 || i >= len(n.Stocks) {
		return n
	}
	n.Stocks[i].Target = target
	return n.Normalize()
}

// Budget tracks how much of the capital is already claimed by targets.
type Budget struct {
	Total     Money
	Allocated Money
	Remaining Money
}

// OverBudget reports whether targets exceed the total investment.
func (b Budget) OverBudget() bool { return b.Remaining.IsNegative() }

// Budget computes the capital allocated by targets and what remains.
func (c PortfolioConfig) Budget() Budget {
	allocated := M(0, c.Currency)
	for _, s := range c.Stocks {
		if s.Target != nil {
			allocated = allocated.Add(*s.Target)
		}
	}
	return Budget{
		Total:     c.TotalInvestment,
		Allocated: allocated,
		Remaining: c.TotalInvestment.Sub(allocated),
	}
}

// Validate checks c and returns all failures joined, or nil.
func (c PortfolioConfig) Validate() error {
	var errs []error
	if c.Currency == "" {
		errs = append(errs, errors.New("currency is required"))
	} else if money.GetCurrency(strings.ToUpper(c.Currency)) == nil {
		errs = append(errs, fmt.Errorf("unknown currency %q", c.Currency))
	}
	if !c.TotalInvestment.IsPositive() {
		errs = append(errs, fmt.Errorf("total investment must be positive, got %s", c.TotalInvestment.Decimal()))
	}
	if len(c.Stocks) == 0 {
		errs = append(errs, errors.New("at least one stock is required"))
	}
	seen := make(map[string]int)
	for i, s := range c.Stocks {
		ticker := strings.TrimSpace(s.Ticker)
		if ticker == "" {
			errs = append(errs, fmt.Errorf("stock #%d: ticker is empty", i+1))
			continue
		}
		key := strings.ToUpper(ticker)
		if j, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("stock #%d: ticker %q already used by stock #%d", i+1, ticker, j+1))
		}
		seen[key] = i
		if s.Target != nil && !s.Target.IsPositive() {
			errs = append(errs, fmt.Errorf("stock #%d (%s): target amount must be positive, got %s", i+1, ticker, s.Target.Decimal()))
		}
	}
	return errors.Join(errs...)
}
