package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquiditySim/internal/dex"
)

func TestLoadSimulateDefaults(t *testing.T) {
	cfg, err := LoadSimulate("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultRPC, cfg.RPCURL)
	assert.Equal(t, common.HexToAddress(DefaultBaseToken), cfg.BaseToken)
	assert.Equal(t, common.HexToAddress(dex.MainnetWETH), cfg.QuoteToken)
	assert.Equal(t, uint32(10000), cfg.Fee)
	assert.Equal(t, "3700", cfg.QuoteUSD.String())
	assert.Equal(t, common.Address{}, cfg.Pool)
	require.Len(t, cfg.Positions, 9)
	assert.Equal(t, "0.09", cfg.Positions[0].Low.String())
	assert.Equal(t, "183.18", cfg.Positions[0].Quote.String())
	assert.True(t, cfg.Positions[8].Quote.IsZero())
	require.Len(t, cfg.CostAmounts, 2)
	assert.Equal(t, "1000000", cfg.CostAmounts[1].String())
	require.Len(t, cfg.ImpactAmounts, 4)
	assert.True(t, cfg.JournalEnabled)
	assert.Equal(t, DefaultPrivateKey, cfg.PrivateKey)
}

func TestLoadSimulateFlagsAndEnv(t *testing.T) {
	t.Setenv("LPSIM_QUOTE_USD", "3500.5")
	t.Setenv("LPSIM_IMPACT_AMOUNTS", "2, 20")

	flags := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.Uint32("fee", 0, "")
	require.NoError(t, flags.Parse([]string{"--rpc", "http://localhost:8545", "--fee", "3000"}))

	cfg, err := LoadSimulate("", flags)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, uint32(3000), cfg.Fee)
	assert.Equal(t, "3500.5", cfg.QuoteUSD.String())
	require.Len(t, cfg.ImpactAmounts, 2)
	assert.Equal(t, "20", cfg.ImpactAmounts[1].String())
}

func TestLoadSimulatePositionsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	content := `
pool: "0x1111111111111111111111111111111111111111"
positions:
  - low: 1.5
    high: 1.7
    base: 85000
    quote: 1
  - low: "3.40"
    high: "10"
    base: "500000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadSimulate(path, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), cfg.Pool)
	require.Len(t, cfg.Positions, 2)
	assert.Equal(t, "1.5", cfg.Positions[0].Low.String())
	assert.Equal(t, "85000", cfg.Positions[0].Base.String())
	assert.True(t, cfg.Positions[1].Quote.IsZero())
}

func TestLoadSimulateRejectsInvalidPositions(t *testing.T) {
	cases := map[string]string{
		"inverted range": "positions:\n  - {low: 2, high: 1, base: 1}\n",
		"empty amounts":  "positions:\n  - {low: 1, high: 2}\n",
		"negative":       "positions:\n  - {low: 1, high: 2, base: -5}\n",
		"bad number":     "positions:\n  - {low: abc, high: 2, base: 1}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sim.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := LoadSimulate(path, nil)
			require.Error(t, err)
		})
	}
}

func TestLoadSimulateRejectsBadAddress(t *testing.T) {
	t.Setenv("LPSIM_BASE_TOKEN", "0x1234")
	_, err := LoadSimulate("", nil)
	require.ErrorContains(t, err, "base-token")
}

func TestLoadTicks(t *testing.T) {
	cfg, err := LoadTicks("", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(200), cfg.TickSpacing)
	assert.Equal(t, uint8(18), cfg.BaseDecimals)
	require.Len(t, cfg.Positions, 9)

	t.Setenv("LPSIM_TICK_SPACING", "0")
	_, err = LoadTicks("", nil)
	require.Error(t, err)
}

func TestLoadFund(t *testing.T) {
	cfg, err := LoadFund("", nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(DefaultHolder), cfg.Holder)
	assert.Equal(t, "1000000", cfg.Amount.String())
	assert.Equal(t, "1000", cfg.WrapETH.String())

	t.Setenv("LPSIM_AMOUNT", "0")
	t.Setenv("LPSIM_WRAP_ETH", "0")
	_, err = LoadFund("", nil)
	require.ErrorContains(t, err, "nothing to fund")
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("pool", " 0x1111111111111111111111111111111111111111 ")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	_, err = ParseAddress("pool", "pool")
	require.Error(t, err)
}
