// Package money provides currency-aware rounding and minor-unit conversion.
// Ledger amounts are stored as signed int64 minor units; anything fractional
// (evaluator results, exchange rates) goes through shopspring decimals so no
// binary floating-point value ever reaches a stored balance.
package money

import "github.com/shopspring/decimal"

// Currency is an ISO 4217 currency code.
type Currency string

// zeroDecimalCurrencies are currencies whose minor unit equals the major unit.
var zeroDecimalCurrencies = map[Currency]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "IDR": true,
	"ISK": true, "JPY": true, "KMF": true, "KRW": true, "PYG": true,
	"RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

// Decimals returns the number of decimal places the currency uses.
func (c Currency) Decimals() int32 {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// Round rounds a raw float result to the currency's precision using
// half-away-from-zero semantics.
func Round(value float64, currency Currency) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(currency.Decimals())
}

// ToMinorUnits converts an already-rounded amount to integer minor units.
func ToMinorUnits(amount decimal.Decimal, currency Currency) int64 {
	return amount.Shift(currency.Decimals()).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units back to a display amount.
func FromMinorUnits(units int64, currency Currency) decimal.Decimal {
	return decimal.NewFromInt(units).Shift(-currency.Decimals())
}

// Convert applies an exchange rate to an amount held in the source currency
// and returns minor units of the target currency. The rate is target units
// per one source unit.
func Convert(units int64, source Currency, rate decimal.Decimal, target Currency) int64 {
	amount := FromMinorUnits(units, source).Mul(rate)
	return ToMinorUnits(amount.Round(target.Decimals()), target)
}
