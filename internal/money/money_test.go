package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDecimals(t *testing.T) {
	if got := Currency("IDR").Decimals(); got != 0 {
		t.Errorf("expected IDR to have 0 decimals, got %d", got)
	}
	if got := Currency("USD").Decimals(); got != 2 {
		t.Errorf("expected USD to have 2 decimals, got %d", got)
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		name     string
		value    float64
		currency Currency
		want     string
	}{
		{"whole_unit_half_up", 100.5, "IDR", "101"},
		{"whole_unit_half_down_magnitude", 100.4, "IDR", "100"},
		{"whole_unit_negative_half_away", -100.5, "IDR", "-101"},
		{"fractional_two_places", 10.005, "USD", "10.01"},
		{"fractional_negative", -10.005, "USD", "-10.01"},
		{"fractional_unchanged", 12.34, "USD", "12.34"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Round(tc.value, tc.currency)
			if got.String() != tc.want {
				t.Errorf("Round(%v, %s) = %s, want %s", tc.value, tc.currency, got, tc.want)
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	if got := ToMinorUnits(decimal.RequireFromString("12.34"), "USD"); got != 1234 {
		t.Errorf("expected 1234 minor units, got %d", got)
	}
	if got := ToMinorUnits(decimal.RequireFromString("50000"), "IDR"); got != 50000 {
		t.Errorf("expected 50000 minor units, got %d", got)
	}
	if got := FromMinorUnits(1234, "USD").String(); got != "12.34" {
		t.Errorf("expected 12.34, got %s", got)
	}
}

func TestConvert(t *testing.T) {
	// $12.50 at 16000 IDR per USD.
	rate := decimal.NewFromInt(16000)
	if got := Convert(1250, "USD", rate, "IDR"); got != 200000 {
		t.Errorf("expected 200000, got %d", got)
	}
	// Round-half-away at the target precision.
	rate = decimal.RequireFromString("0.333")
	if got := Convert(100, "USD", rate, "USD"); got != 33 {
		t.Errorf("expected 33, got %d", got)
	}
}
