package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-12-01", want: New(2025, time.December, 1)},
		{in: "2026-1-2", want: New(2026, time.January, 2)},
		{in: "02/01/2026", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2025, time.December, 32), New(2026, time.January, 1); got != want {
		t.Errorf("New(2025, 12, 32) = %v, want %v", got, want)
	}
	if got, want := New(2026, time.January, 0), New(2025, time.December, 31); got != want {
		t.Errorf("New(2026, 1, 0) = %v, want %v", got, want)
	}
}

func TestAfter(t *testing.T) {
	purchase, valuation := New(2025, time.December, 1), New(2026, time.January, 2)
	if !valuation.After(purchase) {
		t.Errorf("%v.After(%v) = false, want true", valuation, purchase)
	}
	if purchase.After(valuation) || purchase.After(purchase) {
		t.Errorf("After must be strict")
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, time.December, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if string(b) != `"2025-12-01"` {
		t.Errorf("Marshal() = %s, want %q", b, `"2025-12-01"`)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if back != d {
		t.Errorf("Unmarshal() = %v, want %v", back, d)
	}
}
