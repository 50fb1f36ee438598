package simulator

import (
	"fmt"
	"strings"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/date"
	"google.golang.org/genai"
)

// Request is what is sent to the simulator: a task in natural language and
// the schema its answer must follow.
type Request struct {
	Task      string
	Schema    *genai.Schema
	Purchase  date.Date
	Valuation date.Date
}

// required lists the fields every simulated stock must have, in schema order.
var required = []string{"ticker", "name", "shares", "avgCost", "currentPrice", "previousClose"}

// Schema returns the output schema: an array of stocks with all fields required.
func Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"ticker":        {Type: genai.TypeString, Description: "The stock ticker, e.g., NSE:RELIANCE"},
				"name":          {Type: genai.TypeString, Description: "Company name"},
				"shares":        {Type: genai.TypeInteger, Description: "Number of shares held (Must be an integer)"},
				"avgCost":       {Type: genai.TypeNumber, Description: "Purchase price per share on purchase date"},
				"currentPrice":  {Type: genai.TypeNumber, Description: "Price per share on current date"},
				"previousClose": {Type: genai.TypeNumber, Description: "Closing price on the previous trading day"},
			},
			Required:         required,
			PropertyOrdering: required,
		},
	}
}

// market describes the market of a currency for the task text.
func market(currency string) (adjective, exchanges string) {
	switch currency {
	case "INR":
		return "Indian", "NSE/BSE"
	case "USD":
		return "US", "NYSE/NASDAQ"
	case "EUR":
		return "European", "Euronext/XETRA"
	}
	return "", "the exchange"
}

// describeStocks lists the tickers, with their target when there is one.
func describeStocks(cfg portfolio.PortfolioConfig) string {
	parts := make([]string, 0, len(cfg.Stocks))
	for _, s := range cfg.Stocks {
		if s.HasTarget() {
			parts = append(parts, fmt.Sprintf("%s (Target Investment: %s)", s.Ticker, s.Target))
			continue
		}
		parts = append(parts, s.Ticker)
	}
	return strings.Join(parts, ", ")
}

// Build turns cfg into a Request for stocks bought on 'purchase' and valued on 'valuation'.
//
// Stocks with a target are to be allocated close to it, the remaining capital
// is left to the simulator's judgement.
func Build(cfg portfolio.PortfolioConfig, purchase, valuation date.Date) Request {
	adjective, exchanges := market(cfg.Currency)
	subject := "stock portfolio"
	if adjective != "" {
		subject = adjective + " stock portfolio"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I need to simulate a realistic %s for a dashboard.\n\n", subject)
	fmt.Fprintln(&b, "Scenario:")
	fmt.Fprintf(&b, "- Total Capital Available: %s\n", cfg.TotalInvestment)
	fmt.Fprintf(&b, "- Purchase Date: %s\n", purchase)
	fmt.Fprintf(&b, "- Current Valuation Date: %s\n", valuation)
	fmt.Fprintf(&b, "- Stocks: %s\n\n", describeStocks(cfg))
	fmt.Fprintln(&b, "Task:")
	fmt.Fprintln(&b, "1. Distribute the capital among the stocks.")
	fmt.Fprintln(&b, `   - For stocks with a "Target Investment" specified, try to allocate close to that amount.`)
	fmt.Fprintln(&b, "   - Distribute the remaining capital optimally among the other stocks (e.g., equal weight or market-cap weighted simulation).")
	fmt.Fprintf(&b, "2. Estimate realistic stock prices (%s) for %s (Purchase Price) and %s (Current Price).\n", cfg.Currency, purchase, valuation)
	fmt.Fprintln(&b, `3. Calculate the "Shares Held" (shares).`)
	fmt.Fprintf(&b, "   - CRITICAL: \"Shares Held\" MUST be a WHOLE NUMBER (Integer). You cannot buy fractional shares on %s.\n", exchanges)
	fmt.Fprintln(&b, "   - Calculate: floor(Allocated Amount / Purchase Price).")
	fmt.Fprintln(&b, "   - Adjust the allocated amount slightly to match (Shares * Purchase Price).")
	fmt.Fprintf(&b, "4. Provide the \"Previous Close\" (price on the trading day before %s).\n\n", valuation)
	fmt.Fprintln(&b, "Return the data as a JSON array.")

	return Request{
		Task:      b.String(),
		Schema:    Schema(),
		Purchase:  purchase,
		Valuation: valuation,
	}
}
