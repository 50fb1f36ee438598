package renderer

import (
	"math"
	"sort"
	"strings"

	"github.com/etnz/portfolio-dashboard"
	"gonum.org/v1/gonum/floats"
)

// barWidth is the width of the longest bar, in characters.
const barWidth = 20

// Slice is one slice of the allocation chart.
type Slice struct {
	Name   string
	Value  portfolio.Money
	Weight portfolio.Percent
	Bar    string
}

// Bar is one bar of the performance chart.
type Bar struct {
	Symbol string
	Gain   portfolio.Money
	Bar    string
}

// allocationChart returns the current value of each position with its weight,
// largest first.
func allocationChart(positions []portfolio.Position) []Slice {
	if len(positions) == 0 {
		return nil
	}
	slices := make([]Slice, len(positions))
	values := make([]float64, len(positions))
	for i, p := range positions {
		slices[i] = Slice{Name: p.ShortName(), Value: p.Value}
		values[i] = p.Value.AsFloat()
	}
	bars := scaleBars(values, "█")
	if total := floats.Sum(values); total > 0 {
		floats.Scale(100/total, values)
	} else {
		floats.Scale(0, values)
	}
	for i := range slices {
		slices[i].Weight = portfolio.Percent(values[i])
		slices[i].Bar = bars[i]
	}
	sort.SliceStable(slices, func(i, j int) bool { return slices[j].Value.LessThan(slices[i].Value) })
	return slices
}

// performanceChart returns the total gain of each position.
func performanceChart(positions []portfolio.Position) []Bar {
	if len(positions) == 0 {
		return nil
	}
	gains := make([]float64, len(positions))
	for i, p := range positions {
		gains[i] = p.Gain.AsFloat()
	}
	up := scaleBars(gains, "█")
	down := scaleBars(gains, "░")

	res := make([]Bar, len(positions))
	for i, p := range positions {
		res[i] = Bar{Symbol: p.Symbol(), Gain: p.Gain, Bar: up[i]}
		if gains[i] < 0 {
			res[i].Bar = down[i]
		}
	}
	return res
}

// scaleBars draws a bar for each value, proportional to its absolute value.
// The largest absolute value gets barWidth characters.
func scaleBars(values []float64, glyph string) []string {
	abs := make([]float64, len(values))
	for i, v := range values {
		abs[i] = math.Abs(v)
	}
	res := make([]string, len(values))
	if len(abs) == 0 {
		return res
	}
	max := floats.Max(abs)
	if max == 0 {
		return res
	}
	floats.Scale(barWidth/max, abs)
	for i, w := range abs {
		res[i] = strings.Repeat(glyph, int(math.Round(w)))
	}
	return res
}
