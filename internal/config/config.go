package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "LPSIM"

// Defaults for a local fork of Ethereum mainnet.
const (
	DefaultRPC       = "http://127.0.0.1:10999"
	DefaultBaseToken = "0x761a3557184cbc07b7493da0661c41177b2f97fa"
	DefaultHolder    = "0xD920E60b798A2F5a8332799d8a23075c9E77d5F8"
	DefaultFee       = 10000
	DefaultQuoteUSD  = "3700"

	// DefaultPrivateKey is hardhat/anvil development account #0. It is public
	// and only funded on local forks.
	DefaultPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

// newViper builds a viper instance reading env vars with the LPSIM prefix.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log-level", "info")
	v.SetDefault("rpc", DefaultRPC)
	return v
}

// readConfig binds flags and reads the explicit or default config file.
func readConfig(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// ParseAddress validates a hex address option.
func ParseAddress(name, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", name, input)
	}
	return common.HexToAddress(input), nil
}

// parsePositiveDecimal parses a strictly positive decimal option.
func parsePositiveDecimal(name, input string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s: %q", name, input)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s must be positive: %s", name, input)
	}
	return d, nil
}

func getDecimalSlice(v *viper.Viper, key string) ([]decimal.Decimal, error) {
	items := getStringSlice(v, key)
	out := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		d, err := parsePositiveDecimal(key, item)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
