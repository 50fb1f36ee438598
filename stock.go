package portfolio

import "strings"

// StockData is one simulated holding. It is produced by a simulator and never
// modified afterwards: a refresh replaces the whole list.
type StockData struct {
	Ticker        string `json:"ticker"`
	Name          string `json:"name"`
	Shares        int64  `json:"shares"`        // whole shares only
	AvgCost       Money  `json:"avgCost"`       // price paid on the purchase date
	CurrentPrice  Money  `json:"currentPrice"`  // price on the valuation date
	PreviousClose Money  `json:"previousClose"` // close on the trading day before the valuation date
}

// Symbol returns the ticker without its exchange prefix ("NSE:SBIN" gives "SBIN").
func (s StockData) Symbol() string {
	if i := strings.LastIndex(s.Ticker, ":"); i >= 0 {
		return s.Ticker[i+1:]
	}
	return s.Ticker
}

// ShortName returns the first word of the company name, or the symbol when the name is empty.
func (s StockData) ShortName() string {
	if f := strings.Fields(s.Name); len(f) > 0 {
		return f[0]
	}
	return s.Symbol()
}

// Position holds the per-row figures displayed for a single holding.
type Position struct {
	StockData
	Invested         Money   `json:"investedValue"`
	Value            Money   `json:"currentValue"`
	Gain             Money   `json:"totalGain"`
	GainPercent      Percent `json:"totalGainPercent"`
	DayChange        Money   `json:"dayChange"` // per share
	DayChangePercent Percent `json:"dayChangePercent"`
	DayGain          Money   `json:"dayGain"` // DayChange for all the shares
}

// NewPosition computes the derived figures of s.
// Percentages whose base is zero are reported as 0.
func NewPosition(s StockData) Position {
	invested := s.AvgCost.MulShares(s.Shares)
	value := s.CurrentPrice.MulShares(s.Shares)
	gain := value.Sub(invested)
	dayChange := s.CurrentPrice.Sub(s.PreviousClose)
	return Position{
		StockData:        s,
		Invested:         invested,
		Value:            value,
		Gain:             gain,
		GainPercent:      gain.percentOf(invested),
		DayChange:        dayChange,
		DayChangePercent: dayChange.percentOf(s.PreviousClose),
		DayGain:          dayChange.MulShares(s.Shares),
	}
}

// Positions computes the Position of every stock, in order.
func Positions(stocks []StockData) []Position {
	res := make([]Position, 0, len(stocks))
	for _, s := range stocks {
		res = append(res, NewPosition(s))
	}
	return res
}
