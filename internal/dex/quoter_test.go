package dex

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestQuoter(t *testing.T) {
	quoterABI, err := QuoterABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	address := common.HexToAddress(MainnetQuoterV1)
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	growOut, _ := new(big.Int).SetString("2000000000000000000000", 10)
	thousandGrow, _ := new(big.Int).SetString("1000000000000000000000", 10)
	costIn, _ := new(big.Int).SetString("480000000000000000", 10)

	caller := newFakeCaller()
	caller.onCall(t, address, quoterABI, "quoteExactInputSingle",
		[]interface{}{testToken1, testToken0, big.NewInt(10000), oneEth, big.NewInt(0)}, growOut)
	caller.onCall(t, address, quoterABI, "quoteExactOutputSingle",
		[]interface{}{testToken1, testToken0, big.NewInt(10000), thousandGrow, big.NewInt(0)}, costIn)

	quoter := NewQuoter(address, caller)

	out, err := quoter.QuoteExactInputSingle(context.Background(), testToken1, testToken0, 10000, oneEth)
	if err != nil {
		t.Fatalf("quote exact input: %v", err)
	}
	if out.Cmp(growOut) != 0 {
		t.Fatalf("amount out mismatch: %s", out)
	}

	in, err := quoter.QuoteExactOutputSingle(context.Background(), testToken1, testToken0, 10000, thousandGrow)
	if err != nil {
		t.Fatalf("quote exact output: %v", err)
	}
	if in.Cmp(costIn) != 0 {
		t.Fatalf("amount in mismatch: %s", in)
	}

	if _, err := quoter.QuoteExactInputSingle(context.Background(), testToken1, testToken0, 10000, big.NewInt(0)); err == nil {
		t.Fatalf("expected error for zero amount")
	}
	if _, err := quoter.QuoteExactInputSingle(context.Background(), testToken1, testToken0, 3000, oneEth); err == nil {
		t.Fatalf("expected revert for unknown fee tier")
	}
}
