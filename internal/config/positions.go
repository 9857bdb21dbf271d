package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Position is one configured liquidity position: a USD price range for the
// base token and whole-token amounts of base and quote to supply.
type Position struct {
	Low   decimal.Decimal
	High  decimal.Decimal
	Base  decimal.Decimal
	Quote decimal.Decimal
}

type rawPosition struct {
	Low   string `mapstructure:"low"`
	High  string `mapstructure:"high"`
	Base  string `mapstructure:"base"`
	Quote string `mapstructure:"quote"`
}

// DefaultPositions is the ladder minted by the demo when no positions are configured.
func DefaultPositions() []map[string]interface{} {
	return []map[string]interface{}{
		{"low": "0.09", "high": "4.41", "base": "209303", "quote": "183.18"},
		{"low": "1.25", "high": "12.46", "base": "128548", "quote": "11.26"},
		{"low": "1.50", "high": "1.70", "base": "85000", "quote": "1"},
		{"low": "1.70", "high": "2.10", "base": "125000", "quote": "0"},
		{"low": "2.10", "high": "2.50", "base": "125000", "quote": "0"},
		{"low": "2.50", "high": "2.90", "base": "125000", "quote": "0"},
		{"low": "2.90", "high": "3.40", "base": "125000", "quote": "0"},
		{"low": "3.40", "high": "10.00", "base": "500000", "quote": "0"},
		{"low": "10.00", "high": "30.00", "base": "500000", "quote": "0"},
	}
}

func getPositions(v *viper.Viper) ([]Position, error) {
	var raw []rawPosition
	if err := v.UnmarshalKey("positions", &raw); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one position is required")
	}

	positions := make([]Position, 0, len(raw))
	for i, item := range raw {
		pos, err := parsePosition(item)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func parsePosition(item rawPosition) (Position, error) {
	low, err := parsePositiveDecimal("low", item.Low)
	if err != nil {
		return Position{}, err
	}
	high, err := parsePositiveDecimal("high", item.High)
	if err != nil {
		return Position{}, err
	}
	if !low.LessThan(high) {
		return Position{}, fmt.Errorf("low %s must be below high %s", low, high)
	}

	base, err := parseAmount("base", item.Base)
	if err != nil {
		return Position{}, err
	}
	quote, err := parseAmount("quote", item.Quote)
	if err != nil {
		return Position{}, err
	}
	if base.IsZero() && quote.IsZero() {
		return Position{}, fmt.Errorf("base and quote amounts are both zero")
	}
	return Position{Low: low, High: high, Base: base, Quote: quote}, nil
}

func parseAmount(name, input string) (decimal.Decimal, error) {
	if input == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s amount: %q", name, input)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s amount must not be negative: %s", name, input)
	}
	return d, nil
}
