package chain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a local signing key.
type Account struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewAccount parses a hex-encoded private key, with or without the 0x prefix.
func NewAccount(hexKey string) (*Account, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Account{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the account address.
func (a *Account) Address() common.Address {
	return a.address
}

// TransactOpts returns signer options bound to chainID.
func (a *Account) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(a.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("transactor: %w", err)
	}
	return opts, nil
}
