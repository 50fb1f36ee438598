package renderer

import (
	"encoding/json"

	"github.com/etnz/portfolio-dashboard/simulator"
)

// Prompt is the view of a simulator request.
type Prompt struct {
	Model     string
	Purchase  string
	Valuation string
	Task      string
	Schema    string // indented JSON
}

// NewPrompt creates the view of req sent to 'model'.
func NewPrompt(req simulator.Request, model string) (*Prompt, error) {
	schema, err := json.MarshalIndent(req.Schema, "", "  ")
	if err != nil {
		return nil, err
	}
	return &Prompt{
		Model:     model,
		Purchase:  req.Purchase.String(),
		Valuation: req.Valuation.String(),
		Task:      req.Task,
		Schema:    string(schema),
	}, nil
}
