package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Quoter reads swap quotes from the V1 quoter contract through eth_call.
type Quoter struct {
	address common.Address
	caller  ethereum.ContractCaller
}

func NewQuoter(address common.Address, caller ethereum.ContractCaller) *Quoter {
	return &Quoter{address: address, caller: caller}
}

// QuoteExactInputSingle returns the amount of tokenOut received for amountIn of tokenIn.
func (q *Quoter) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error) {
	return q.quote(ctx, "quoteExactInputSingle", tokenIn, tokenOut, fee, amountIn)
}

// QuoteExactOutputSingle returns the amount of tokenIn needed to receive amountOut of tokenOut.
func (q *Quoter) QuoteExactOutputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountOut *big.Int) (*big.Int, error) {
	return q.quote(ctx, "quoteExactOutputSingle", tokenIn, tokenOut, fee, amountOut)
}

func (q *Quoter) quote(ctx context.Context, method string, tokenIn, tokenOut common.Address, fee uint32, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%s: amount must be positive", method)
	}
	parsed, err := QuoterABI()
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}
	values, err := callMethod(ctx, q.caller, q.address, parsed, method, nil,
		tokenIn, tokenOut, new(big.Int).SetUint64(uint64(fee)), amount, big.NewInt(0))
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}
