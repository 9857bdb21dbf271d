package report

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatTokenAmount renders a raw token amount with the full decimal precision of the token.
func FormatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// Round renders a decimal string with at most places fractional digits.
// Values that do not parse are returned unchanged.
func Round(value string, places int32) string {
	if value == "" {
		return "-"
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	return d.Round(places).String()
}

// Percent renders a ratio as a percentage with two decimals.
func Percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2) + "%"
}
