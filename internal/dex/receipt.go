package dex

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrTxReverted           = errors.New("transaction reverted")
	ErrIncreaseLiquidityLog = errors.New("increase liquidity event not found")
)

// MintReceipt is the outcome of a position manager mint read from its receipt.
type MintReceipt struct {
	TokenID   *big.Int
	Liquidity *big.Int
	Amount0   *big.Int
	Amount1   *big.Int
	Owner     common.Address
	TickLower int32
	TickUpper int32
}

// DecodeMintReceipt extracts the minted position from the position manager's
// IncreaseLiquidity event and, when present, the pool's Mint event.
func DecodeMintReceipt(receipt *types.Receipt, pool, positionManager common.Address) (MintReceipt, error) {
	if receipt == nil {
		return MintReceipt{}, fmt.Errorf("receipt is nil")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return MintReceipt{}, fmt.Errorf("%w: %s", ErrTxReverted, receipt.TxHash.Hex())
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return MintReceipt{}, fmt.Errorf("parse pool abi: %w", err)
	}
	pmABI, err := PositionManagerABI()
	if err != nil {
		return MintReceipt{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	mintEvent := poolABI.Events["Mint"]
	increaseEvent := pmABI.Events["IncreaseLiquidity"]

	var (
		out   MintReceipt
		found bool
	)
	for _, log := range receipt.Logs {
		if log == nil || len(log.Topics) == 0 {
			continue
		}
		switch {
		case log.Address == pool && log.Topics[0] == mintEvent.ID:
			if err := decodePoolMint(mintEvent, log, &out); err != nil {
				return MintReceipt{}, err
			}
		case log.Address == positionManager && log.Topics[0] == increaseEvent.ID:
			if err := decodeIncreaseLiquidity(increaseEvent, log, &out); err != nil {
				return MintReceipt{}, err
			}
			found = true
		}
	}
	if !found {
		return MintReceipt{}, fmt.Errorf("%w: %s", ErrIncreaseLiquidityLog, receipt.TxHash.Hex())
	}
	return out, nil
}

func decodePoolMint(event abi.Event, log *types.Log, out *MintReceipt) error {
	if err := checkTopicCount(event, log.Topics); err != nil {
		return err
	}
	var indexed struct {
		Owner     common.Address
		TickLower *big.Int
		TickUpper *big.Int
	}
	if err := abi.ParseTopics(&indexed, indexedArguments(event.Inputs), log.Topics[1:]); err != nil {
		return fmt.Errorf("parse topics: %w", err)
	}
	tickLower, err := int24FromBig(indexed.TickLower)
	if err != nil {
		return err
	}
	tickUpper, err := int24FromBig(indexed.TickUpper)
	if err != nil {
		return err
	}
	out.Owner = indexed.Owner
	out.TickLower = tickLower
	out.TickUpper = tickUpper
	return nil
}

func decodeIncreaseLiquidity(event abi.Event, log *types.Log, out *MintReceipt) error {
	if err := checkTopicCount(event, log.Topics); err != nil {
		return err
	}
	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != 3 {
		return fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}

	liquidity, err := asBigInt(values[0])
	if err != nil {
		return err
	}
	amount0, err := asBigInt(values[1])
	if err != nil {
		return err
	}
	amount1, err := asBigInt(values[2])
	if err != nil {
		return err
	}

	out.TokenID = new(big.Int).SetBytes(log.Topics[1].Bytes())
	out.Liquidity = liquidity
	out.Amount0 = amount0
	out.Amount1 = amount1
	return nil
}

func checkTopicCount(event abi.Event, topics []common.Hash) error {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return fmt.Errorf("%s: expected %d topics, got %d", event.Name, indexedCount+1, len(topics))
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
