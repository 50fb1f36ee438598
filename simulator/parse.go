package simulator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/portfolio-dashboard"
)

// Parse decodes a simulator payload into stocks priced in 'currency'.
//
// The payload must be a JSON array of objects with all the required fields.
// shares must be a whole non negative number and prices must be positive.
// An empty payload gives ErrEmptyResponse, anything else that does not fit
// gives a *SchemaError.
func Parse(payload []byte, currency string) ([]portfolio.StockData, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, ErrEmptyResponse
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &SchemaError{Path: "$", Reason: "not valid JSON", Err: err}
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, &SchemaError{Path: "$", Reason: fmt.Sprintf("want an array got %s", kind(doc))}
	}

	stocks := make([]portfolio.StockData, 0, len(items))
	for i := range items {
		s, err := parseStock(doc, i, currency)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, nil
}

// parseStock reads the i-th stock of doc.
func parseStock(doc any, i int, currency string) (portfolio.StockData, error) {
	var s portfolio.StockData
	var err error
	if s.Ticker, err = str(doc, i, "ticker"); err != nil {
		return s, err
	}
	if s.Name, err = str(doc, i, "name"); err != nil {
		return s, err
	}

	shares, err := num(doc, i, "shares")
	if err != nil {
		return s, err
	}
	if shares < 0 || shares != math.Trunc(shares) || shares >= math.MaxInt64 {
		return s, &SchemaError{Path: path(i, "shares"), Reason: fmt.Sprintf("want a whole non negative number got %v", shares)}
	}
	s.Shares = int64(shares)

	prices := []struct {
		field string
		dst   *portfolio.Money
	}{
		{"avgCost", &s.AvgCost},
		{"currentPrice", &s.CurrentPrice},
		{"previousClose", &s.PreviousClose},
	}
	for _, p := range prices {
		v, err := num(doc, i, p.field)
		if err != nil {
			return s, err
		}
		if v <= 0 {
			return s, &SchemaError{Path: path(i, p.field), Reason: fmt.Sprintf("want a positive price got %v", v)}
		}
		*p.dst = portfolio.M(v, currency)
	}
	return s, nil
}

func path(i int, field string) string { return fmt.Sprintf("$[%d].%s", i, field) }

// get evaluates the json path of a field of the i-th element.
func get(doc any, i int, field string) (any, error) {
	p := path(i, field)
	v, err := jsonpath.Get(p, doc)
	if err != nil {
		return nil, &SchemaError{Path: p, Reason: "missing required field", Err: err}
	}
	if v == nil {
		return nil, &SchemaError{Path: p, Reason: "missing required field"}
	}
	return v, nil
}

func str(doc any, i int, field string) (string, error) {
	v, err := get(doc, i, field)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &SchemaError{Path: path(i, field), Reason: fmt.Sprintf("want a string got %s", kind(v))}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &SchemaError{Path: path(i, field), Reason: "empty string"}
	}
	return s, nil
}

func num(doc any, i int, field string) (float64, error) {
	v, err := get(doc, i, field)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, &SchemaError{Path: path(i, field), Reason: fmt.Sprintf("want a number got %s", kind(v))}
	}
	return f, nil
}

// kind names the JSON type of v for error messages.
func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}
