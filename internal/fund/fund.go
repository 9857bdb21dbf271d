package fund

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"liquiditySim/internal/dex"
)

// Node is the subset of a fork node the funder needs.
type Node interface {
	CallRPC(ctx context.Context, result interface{}, method string, args ...interface{}) error
	WaitReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*types.Receipt, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Backend() bind.ContractBackend
}

// Request describes one funding run. Amounts are in base units; a nil or
// zero amount skips that step.
type Request struct {
	Token     common.Address
	Holder    common.Address
	Recipient common.Address
	Amount    *big.Int
	WETH      common.Address
	WrapWei   *big.Int
}

// Result holds the hashes of the transactions that were sent.
type Result struct {
	TransferTx common.Hash
	WrapTx     common.Hash
}

type sendTxArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// Funder moves tokens out of a whale account on a hardhat fork and wraps ETH
// for the local account.
type Funder struct {
	node         Node
	logger       *zap.Logger
	pollInterval time.Duration
}

func NewFunder(node Node, pollInterval time.Duration, logger *zap.Logger) *Funder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Funder{node: node, logger: logger, pollInterval: pollInterval}
}

// Fund runs the transfer and the wrap in order.
func (f *Funder) Fund(ctx context.Context, req Request, opts *bind.TransactOpts) (Result, error) {
	var res Result
	if positive(req.Amount) {
		hash, err := f.TransferAsHolder(ctx, req.Token, req.Holder, req.Recipient, req.Amount)
		if err != nil {
			return res, err
		}
		res.TransferTx = hash
	}
	if positive(req.WrapWei) {
		hash, err := f.WrapETH(ctx, opts, req.WETH, req.WrapWei)
		if err != nil {
			return res, err
		}
		res.WrapTx = hash
	}
	return res, nil
}

// TransferAsHolder impersonates holder and sends amount of token to recipient.
func (f *Funder) TransferAsHolder(ctx context.Context, token, holder, recipient common.Address, amount *big.Int) (common.Hash, error) {
	data, err := dex.PackTransfer(recipient, amount)
	if err != nil {
		return common.Hash{}, err
	}

	if err := f.node.CallRPC(ctx, nil, "hardhat_impersonateAccount", holder); err != nil {
		return common.Hash{}, fmt.Errorf("impersonate %s: %w", holder.Hex(), err)
	}
	defer func() {
		if err := f.node.CallRPC(context.WithoutCancel(ctx), nil, "hardhat_stopImpersonatingAccount", holder); err != nil {
			f.logger.Warn("stop impersonating failed", zap.String("holder", holder.Hex()), zap.Error(err))
		}
	}()

	var hash common.Hash
	args := sendTxArgs{From: holder, To: token, Data: data}
	if err := f.node.CallRPC(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("send transfer: %w", err)
	}
	f.logger.Info("transfer sent",
		zap.String("token", token.Hex()),
		zap.String("from", holder.Hex()),
		zap.String("to", recipient.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx", hash.Hex()),
	)

	receipt, err := f.node.WaitReceipt(ctx, hash, f.pollInterval)
	if err != nil {
		return hash, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return hash, fmt.Errorf("transfer %s: %w", hash.Hex(), dex.ErrTxReverted)
	}
	return hash, nil
}

// WrapETH deposits wei into the WETH contract from the signing account.
func (f *Funder) WrapETH(ctx context.Context, opts *bind.TransactOpts, weth common.Address, wei *big.Int) (common.Hash, error) {
	if opts == nil {
		return common.Hash{}, fmt.Errorf("wrap eth: transact opts are required")
	}
	wrapOpts := *opts
	wrapOpts.Context = ctx
	wrapOpts.Value = wei

	tx, err := dex.DepositWETH(&wrapOpts, f.node.Backend(), weth)
	if err != nil {
		return common.Hash{}, err
	}
	f.logger.Info("wrap sent", zap.String("wei", wei.String()), zap.String("tx", tx.Hash().Hex()))

	receipt, err := f.node.WaitMined(ctx, tx)
	if err != nil {
		return tx.Hash(), err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("wrap %s: %w", tx.Hash().Hex(), dex.ErrTxReverted)
	}
	return tx.Hash(), nil
}

func positive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
