package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"liquiditySim/internal/model"
)

// MintParams mirrors INonfungiblePositionManager.MintParams.
type MintParams struct {
	Token0         common.Address
	Token1         common.Address
	Fee            *big.Int
	TickLower      *big.Int
	TickUpper      *big.Int
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

// PositionManager talks to a NonfungiblePositionManager deployment.
type PositionManager struct {
	address common.Address
	caller  ethereum.ContractCaller
}

func NewPositionManager(address common.Address, caller ethereum.ContractCaller) *PositionManager {
	return &PositionManager{address: address, caller: caller}
}

// Address returns the position manager contract address.
func (p *PositionManager) Address() common.Address {
	return p.address
}

// Mint submits a mint transaction. Zero minimum amounts are filled in when unset.
func (p *PositionManager) Mint(opts *bind.TransactOpts, backend bind.ContractBackend, params MintParams) (*types.Transaction, error) {
	if params.Amount0Min == nil {
		params.Amount0Min = big.NewInt(0)
	}
	if params.Amount1Min == nil {
		params.Amount1Min = big.NewInt(0)
	}
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}
	contract := bind.NewBoundContract(p.address, parsed, backend, backend, backend)
	tx, err := contract.Transact(opts, "mint", params)
	if err != nil {
		return nil, fmt.Errorf("mint [%s, %s]: %w", params.TickLower, params.TickUpper, err)
	}
	return tx, nil
}

// ListPositions enumerates the position NFTs held by owner.
func (p *PositionManager) ListPositions(ctx context.Context, owner common.Address) ([]model.LPPosition, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse position manager abi: %w", err)
	}

	values, err := callMethod(ctx, p.caller, p.address, parsed, "balanceOf", nil, owner)
	if err != nil {
		return nil, err
	}
	count, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}

	positions := make([]model.LPPosition, 0, count.Int64())
	for i := int64(0); i < count.Int64(); i++ {
		values, err := callMethod(ctx, p.caller, p.address, parsed, "tokenOfOwnerByIndex", nil, owner, big.NewInt(i))
		if err != nil {
			return nil, err
		}
		tokenID, err := asBigInt(values[0])
		if err != nil {
			return nil, fmt.Errorf("tokenOfOwnerByIndex: %w", err)
		}
		position, err := p.Position(ctx, tokenID)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	return positions, nil
}

// Position reads a single position by token id.
func (p *PositionManager) Position(ctx context.Context, tokenID *big.Int) (model.LPPosition, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("parse position manager abi: %w", err)
	}
	values, err := callMethod(ctx, p.caller, p.address, parsed, "positions", nil, tokenID)
	if err != nil {
		return model.LPPosition{}, err
	}
	if len(values) < 8 {
		return model.LPPosition{}, fmt.Errorf("unexpected positions values: %d", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("position %s token0: %w", tokenID, err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("position %s token1: %w", tokenID, err)
	}
	fee, err := asBigInt(values[4])
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("position %s fee: %w", tokenID, err)
	}
	lowerInt, err := asBigInt(values[5])
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("position %s tickLower: %w", tokenID, err)
	}
	upperInt, err := asBigInt(values[6])
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("position %s tickUpper: %w", tokenID, err)
	}
	liquidity, err := asBigInt(values[7])
	if err != nil {
		return model.LPPosition{}, fmt.Errorf("position %s liquidity: %w", tokenID, err)
	}
	tickLower, err := int24FromBig(lowerInt)
	if err != nil {
		return model.LPPosition{}, err
	}
	tickUpper, err := int24FromBig(upperInt)
	if err != nil {
		return model.LPPosition{}, err
	}

	return model.LPPosition{
		TokenID:   tokenID.String(),
		Token0:    token0.Hex(),
		Token1:    token1.Hex(),
		Fee:       uint32(fee.Uint64()),
		TickLower: tickLower,
		TickUpper: tickUpper,
		Liquidity: liquidity.String(),
	}, nil
}
