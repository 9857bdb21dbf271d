package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// TokenBalance returns the ERC20 balance of owner.
func TokenBalance(ctx context.Context, caller ethereum.ContractCaller, token, owner common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, parsed, "balanceOf", nil, owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// Allowance returns how much spender may move on behalf of owner.
func Allowance(ctx context.Context, caller ethereum.ContractCaller, token, owner, spender common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := callMethod(ctx, caller, token, parsed, "allowance", nil, owner, spender)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// EnsureAllowance approves spender for the maximum amount when the current
// allowance is below amount. It returns nil when no approval was needed.
func EnsureAllowance(ctx context.Context, backend bind.ContractBackend, opts *bind.TransactOpts, token, spender common.Address, amount *big.Int, logger *zap.Logger) (*types.Transaction, error) {
	current, err := Allowance(ctx, backend, token, opts.From, spender)
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	if current.Cmp(amount) >= 0 {
		return nil, nil
	}

	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	contract := bind.NewBoundContract(token, parsed, backend, backend, backend)
	tx, err := contract.Transact(opts, "approve", spender, maxUint256)
	if err != nil {
		return nil, fmt.Errorf("approve %s: %w", token.Hex(), err)
	}
	if logger != nil {
		logger.Info("approval sent",
			zap.String("token", token.Hex()),
			zap.String("spender", spender.Hex()),
			zap.String("tx", tx.Hash().Hex()),
		)
	}
	return tx, nil
}

// PackTransfer encodes an ERC20 transfer call.
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return parsed.Pack("transfer", to, amount)
}

// DepositWETH wraps opts.Value of native ETH into WETH.
func DepositWETH(opts *bind.TransactOpts, backend bind.ContractBackend, weth common.Address) (*types.Transaction, error) {
	if opts.Value == nil || opts.Value.Sign() <= 0 {
		return nil, fmt.Errorf("deposit value must be positive")
	}
	parsed, err := WETHABI()
	if err != nil {
		return nil, fmt.Errorf("parse weth abi: %w", err)
	}
	contract := bind.NewBoundContract(weth, parsed, backend, backend, backend)
	return contract.Transact(opts, "deposit")
}
