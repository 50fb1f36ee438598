package portfolio

// Summary holds the portfolio level totals. It is derived from a list of
// StockData and never stored.
type Summary struct {
	TotalValue       Money   `json:"totalValue"`
	TotalInvested    Money   `json:"totalInvested"`
	TotalGain        Money   `json:"totalGain"`
	TotalGainPercent Percent `json:"totalGainPercent"`
	DayGain          Money   `json:"dayGain"`
	DayGainPercent   Percent `json:"dayGainPercent"`
}

// Summarize reduces stocks into a Summary expressed in 'currency'.
//
// An empty list yields a zero Summary. Percentages are 0 whenever their base
// (invested capital, previous day value) is not positive.
func Summarize(currency string, stocks []StockData) Summary {
	value := M(0, currency)
	invested := M(0, currency)
	previous := M(0, currency)

	for _, s := range stocks {
		value = value.Add(s.CurrentPrice.MulShares(s.Shares))
		invested = invested.Add(s.AvgCost.MulShares(s.Shares))
		previous = previous.Add(s.PreviousClose.MulShares(s.Shares))
	}

	gain := value.Sub(invested)
	dayGain := value.Sub(previous)
	return Summary{
		TotalValue:       value,
		TotalInvested:    invested,
		TotalGain:        gain,
		TotalGainPercent: gain.percentOf(invested),
		DayGain:          dayGain,
		DayGainPercent:   dayGain.percentOf(previous),
	}
}
