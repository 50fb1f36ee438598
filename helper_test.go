package portfolio

// INR is a helper for test to create rupees from const
func INR(v float64) Money { return M(v, "INR") }

// stock is a helper for test to create a simulated holding priced in INR.
func stock(ticker string, shares int64, avgCost, currentPrice, previousClose float64) StockData {
	return StockData{
		Ticker:        ticker,
		Name:          ticker + " Ltd",
		Shares:        shares,
		AvgCost:       INR(avgCost),
		CurrentPrice:  INR(currentPrice),
		PreviousClose: INR(previousClose),
	}
}

// target is a helper for test to get a target amount pointer.
func target(v float64) *Money {
	m := INR(v)
	return &m
}
