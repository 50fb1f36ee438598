package renderer

import (
	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/date"
)

// Dashboard is the view of a dashboard.State.
// Numbers are kept as Money and Percent so that templates can use their
// String and SignedString renderers.
type Dashboard struct {
	Title     string
	Purchase  date.Date
	Valuation date.Date

	Status    dashboard.Status
	Err       string
	UpdatedAt string
	Version   uint64

	Summary     portfolio.Summary
	Positions   []portfolio.Position
	Allocation  []Slice
	Performance []Bar

	Currency string
	Budget   portfolio.Budget
	Plan     []PlanRow
}

// Loading reports whether a refresh is in flight.
func (d *Dashboard) Loading() bool { return d.Status == dashboard.Loading }

// Failed reports whether the last refresh failed.
func (d *Dashboard) Failed() bool { return d.Status == dashboard.Error }

// HasData reports whether there are holdings to display.
func (d *Dashboard) HasData() bool { return len(d.Positions) > 0 }

// PlanRow compares the planned capital of a ticker with the simulated investment.
type PlanRow struct {
	portfolio.Allocation
	Simulated bool            // the simulator returned this ticker
	Invested  portfolio.Money // simulated invested value
}

// NewDashboard creates the view of st, for stocks bought on 'purchase' and valued on 'valuation'.
// 'policy' computes the planned allocation, EqualWeight when nil.
func NewDashboard(st dashboard.State, purchase, valuation date.Date, policy portfolio.AllocationPolicy) *Dashboard {
	if policy == nil {
		policy = portfolio.EqualWeight{}
	}
	positions := st.Positions()
	d := &Dashboard{
		Title:       "Portfolio Dashboard",
		Purchase:    purchase,
		Valuation:   valuation,
		Status:      st.Status,
		Err:         st.Err,
		Version:     st.Version,
		Summary:     st.Summary,
		Positions:   positions,
		Allocation:  allocationChart(positions),
		Performance: performanceChart(positions),
		Currency:    st.Config.Currency,
		Budget:      st.Config.Budget(),
	}
	if !st.UpdatedAt.IsZero() {
		d.UpdatedAt = st.UpdatedAt.Format("2006-01-02 15:04:05")
	}

	invested := make(map[string]portfolio.Money, len(positions))
	for _, p := range positions {
		invested[p.Ticker] = p.Invested
	}
	for _, a := range policy.Allocate(st.Config) {
		row := PlanRow{Allocation: a}
		row.Invested, row.Simulated = invested[a.Ticker]
		d.Plan = append(d.Plan, row)
	}
	return d
}
