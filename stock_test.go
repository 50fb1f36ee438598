package portfolio

import "testing"

func TestNewPosition(t *testing.T) {
	p := NewPosition(stock("NSE:SBIN", 10, 100, 95, 100))

	if want := INR(1000); !p.Invested.Equal(want) {
		t.Errorf("Invested = %v, want %v", p.Invested, want)
	}
	if want := INR(950); !p.Value.Equal(want) {
		t.Errorf("Value = %v, want %v", p.Value, want)
	}
	if want := INR(-50); !p.Gain.Equal(want) {
		t.Errorf("Gain = %v, want %v", p.Gain, want)
	}
	if p.GainPercent != -5 {
		t.Errorf("GainPercent = %v, want -5", p.GainPercent)
	}
	if want := INR(-5); !p.DayChange.Equal(want) {
		t.Errorf("DayChange = %v, want %v", p.DayChange, want)
	}
	// exactly -5, not approximately
	if p.DayChangePercent != -5.0 {
		t.Errorf("DayChangePercent = %v, want -5.0", p.DayChangePercent)
	}
	if want := INR(-50); !p.DayGain.Equal(want) {
		t.Errorf("DayGain = %v, want %v", p.DayGain, want)
	}
}

func TestNewPositionZeroShares(t *testing.T) {
	p := NewPosition(stock("NSE:SBIN", 0, 100, 120, 110))
	if p.GainPercent != 0 {
		t.Errorf("GainPercent = %v, want 0 when nothing is invested", p.GainPercent)
	}
	if !p.DayChangePercent.Equal(9.0909) {
		t.Errorf("DayChangePercent = %v, want 9.09", p.DayChangePercent)
	}
}

func TestPositions(t *testing.T) {
	stocks := []StockData{stock("A", 1, 1, 2, 1), stock("B", 2, 1, 1, 1)}
	got := Positions(stocks)
	if len(got) != 2 {
		t.Fatalf("len(Positions()) = %d, want 2", len(got))
	}
	if got[0].Ticker != "A" || got[1].Ticker != "B" {
		t.Errorf("Positions() order = %s, %s, want A, B", got[0].Ticker, got[1].Ticker)
	}
}

func TestSymbolAndShortName(t *testing.T) {
	tests := []struct {
		ticker, name       string
		wantSymbol, wantSN string
	}{
		{"NSE:RELIANCE", "Reliance Industries Limited", "RELIANCE", "Reliance"},
		{"AAPL", "Apple Inc.", "AAPL", "Apple"},
		{"NSE:HFCL", "", "HFCL", "HFCL"},
	}
	for _, tt := range tests {
		s := StockData{Ticker: tt.ticker, Name: tt.name}
		if got := s.Symbol(); got != tt.wantSymbol {
			t.Errorf("Symbol(%q) = %q, want %q", tt.ticker, got, tt.wantSymbol)
		}
		if got := s.ShortName(); got != tt.wantSN {
			t.Errorf("ShortName(%q) = %q, want %q", tt.name, got, tt.wantSN)
		}
	}
}
