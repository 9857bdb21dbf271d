package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// first default account of a hardhat node
const hardhatKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNewAccount(t *testing.T) {
	account, err := NewAccount(hardhatKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), account.Address())

	unprefixed, err := NewAccount(hardhatKey[2:])
	require.NoError(t, err)
	assert.Equal(t, account.Address(), unprefixed.Address())
}

func TestNewAccountRejectsBadKeys(t *testing.T) {
	_, err := NewAccount("")
	require.Error(t, err)

	_, err = NewAccount("0x1234")
	require.Error(t, err)
}

func TestTransactOpts(t *testing.T) {
	account, err := NewAccount(hardhatKey)
	require.NoError(t, err)

	opts, err := account.TransactOpts(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, account.Address(), opts.From)
	require.NotNil(t, opts.Signer)
}
