package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestListPositions(t *testing.T) {
	pmABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	address := common.HexToAddress(MainnetPositionManager)
	owner := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	zero := big.NewInt(0)

	caller := newFakeCaller()
	caller.onCall(t, address, pmABI, "balanceOf", []interface{}{owner}, big.NewInt(2))
	caller.onCall(t, address, pmABI, "tokenOfOwnerByIndex", []interface{}{owner, big.NewInt(0)}, big.NewInt(700001))
	caller.onCall(t, address, pmABI, "tokenOfOwnerByIndex", []interface{}{owner, big.NewInt(1)}, big.NewInt(700002))
	caller.onCall(t, address, pmABI, "positions", []interface{}{big.NewInt(700001)},
		zero, common.Address{}, testToken0, testToken1, big.NewInt(10000),
		big.NewInt(-106400), big.NewInt(-67200), big.NewInt(5000), zero, zero, zero, zero)
	caller.onCall(t, address, pmABI, "positions", []interface{}{big.NewInt(700002)},
		zero, common.Address{}, testToken0, testToken1, big.NewInt(10000),
		big.NewInt(-84000), big.NewInt(-81800), big.NewInt(0), zero, zero, zero, zero)

	positions, err := NewPositionManager(address, caller).ListPositions(context.Background(), owner)
	if err != nil {
		t.Fatalf("list positions: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}

	first := positions[0]
	if first.TokenID != "700001" || first.TickLower != -106400 || first.TickUpper != -67200 {
		t.Fatalf("first position mismatch: %+v", first)
	}
	if first.Liquidity != "5000" || first.Fee != 10000 || first.Token0 != testToken0.Hex() {
		t.Fatalf("first position fields mismatch: %+v", first)
	}
	if positions[1].TokenID != "700002" || positions[1].Liquidity != "0" {
		t.Fatalf("second position mismatch: %+v", positions[1])
	}
}

func TestMintParamsPackAsTuple(t *testing.T) {
	pmABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	params := MintParams{
		Token0:         testToken0,
		Token1:         testToken1,
		Fee:            big.NewInt(10000),
		TickLower:      big.NewInt(-106400),
		TickUpper:      big.NewInt(-67200),
		Amount0Desired: big.NewInt(1000),
		Amount1Desired: big.NewInt(2000),
		Amount0Min:     big.NewInt(0),
		Amount1Min:     big.NewInt(0),
		Recipient:      common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Deadline:       big.NewInt(1700000600),
	}
	data, err := pmABI.Pack("mint", params)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}
	if len(data) != 4+11*32 {
		t.Fatalf("calldata length mismatch: %d", len(data))
	}

	values, err := pmABI.Methods["mint"].Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack mint: %v", err)
	}
	decoded, ok := abi.ConvertType(values[0], new(MintParams)).(*MintParams)
	if !ok {
		t.Fatalf("unexpected tuple type %T", values[0])
	}
	if decoded.Recipient != params.Recipient || decoded.Deadline.Cmp(params.Deadline) != 0 {
		t.Fatalf("tuple field mismatch: %+v", decoded)
	}
	if decoded.TickLower.Int64() != -106400 || decoded.TickUpper.Int64() != -67200 {
		t.Fatalf("tick mismatch: %s %s", decoded.TickLower, decoded.TickUpper)
	}
}

func TestDecodeMintReceipt(t *testing.T) {
	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	pmABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	pm := common.HexToAddress(MainnetPositionManager)

	mintData, err := poolABI.Events["Mint"].Inputs.NonIndexed().Pack(
		pm,
		big.NewInt(5000),
		big.NewInt(1000),
		big.NewInt(0),
	)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}
	increaseData, err := pmABI.Events["IncreaseLiquidity"].Inputs.NonIndexed().Pack(
		big.NewInt(5000),
		big.NewInt(1000),
		big.NewInt(0),
	)
	if err != nil {
		t.Fatalf("pack increase liquidity: %v", err)
	}

	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: common.HexToHash("0xdef"),
		Logs: []*types.Log{
			{
				Address: testToken0,
				Topics:  []common.Hash{common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")},
			},
			{
				Address: testPool,
				Topics: []common.Hash{
					poolABI.Events["Mint"].ID,
					topicFromAddress(pm),
					topicFromInt24(-106400),
					topicFromInt24(-67200),
				},
				Data: mintData,
			},
			{
				Address: pm,
				Topics: []common.Hash{
					pmABI.Events["IncreaseLiquidity"].ID,
					common.BigToHash(big.NewInt(700001)),
				},
				Data: increaseData,
			},
		},
	}

	out, err := DecodeMintReceipt(receipt, testPool, pm)
	if err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if out.TokenID.Int64() != 700001 {
		t.Fatalf("token id mismatch: %s", out.TokenID)
	}
	if out.Liquidity.Int64() != 5000 || out.Amount0.Int64() != 1000 || out.Amount1.Sign() != 0 {
		t.Fatalf("amount mismatch: %s %s %s", out.Liquidity, out.Amount0, out.Amount1)
	}
	if out.TickLower != -106400 || out.TickUpper != -67200 {
		t.Fatalf("tick mismatch: %d %d", out.TickLower, out.TickUpper)
	}
	if out.Owner != pm {
		t.Fatalf("owner mismatch: %s", out.Owner.Hex())
	}

	receipt.Status = types.ReceiptStatusFailed
	if _, err := DecodeMintReceipt(receipt, testPool, pm); !errors.Is(err, ErrTxReverted) {
		t.Fatalf("expected ErrTxReverted, got %v", err)
	}

	receipt.Status = types.ReceiptStatusSuccessful
	receipt.Logs = receipt.Logs[:2]
	if _, err := DecodeMintReceipt(receipt, testPool, pm); !errors.Is(err, ErrIncreaseLiquidityLog) {
		t.Fatalf("expected ErrIncreaseLiquidityLog, got %v", err)
	}
}
