package portfolio

// Allocation is the capital planned for one ticker.
type Allocation struct {
	Ticker   string `json:"ticker"`
	Amount   Money  `json:"amount"`
	Targeted bool   `json:"targeted"` // Amount comes from the user's target
}

// AllocationPolicy decides how the capital of a configuration is spread among
// its stocks. The simulator applies its own judgement, a policy only describes
// the plan shown next to the simulated figures.
type AllocationPolicy interface {
	Allocate(cfg PortfolioConfig) []Allocation
}

// EqualWeight gives targeted stocks their target and splits what remains of
// the total equally among the other stocks. When targets exceed the total the
// other stocks get nothing.
type EqualWeight struct{}

func (EqualWeight) Allocate(cfg PortfolioConfig) []Allocation {
	budget := cfg.Budget()
	remaining := budget.Remaining
	if remaining.IsNegative() {
		remaining = M(0, cfg.Currency)
	}

	free := 0
	for _, s := range cfg.Stocks {
		if !s.HasTarget() {
			free++
		}
	}
	share := M(0, cfg.Currency)
	if free > 0 {
		share = remaining.DivInt(free)
	}

	res := make([]Allocation, 0, len(cfg.Stocks))
	for _, s := range cfg.Stocks {
		if s.HasTarget() {
			res = append(res, Allocation{Ticker: s.Ticker, Amount: *s.Target, Targeted: true})
			continue
		}
		res = append(res, Allocation{Ticker: s.Ticker, Amount: share})
	}
	return res
}
