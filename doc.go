// Package portfolio provides the types and calculations behind the simulated
// portfolio dashboard.
//
// The core functionalities include:
//   - Configuration: the capital to invest and the list of tickers, each with
//     an optional target amount, edited as immutable values.
//   - Simulated holdings: one StockData per ticker as produced by a simulator
//     (shares held, average cost, current price and previous close).
//   - Aggregation: a stateless reduction of the holdings into a Summary
//     (value, invested capital, total and day gains with their percentages)
//     and per-row Positions for display.
//   - Allocation: a pluggable policy describing how capital without a target
//     is expected to be spread, used for display only.
//
// All monetary arithmetic is exact (decimal based). Floating point numbers only
// appear at the boundaries, when decoding a simulator payload or encoding JSON.
package portfolio
