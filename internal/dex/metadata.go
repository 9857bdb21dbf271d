package dex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquiditySim/internal/model"
)

// ErrPoolNotFound is returned when the factory has no pool for a token pair and fee.
var ErrPoolNotFound = errors.New("pool not found")

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// PoolState is the mutable pool state read at a block.
type PoolState struct {
	BlockNumber  uint64
	SqrtPriceX96 *big.Int
	Tick         int32
	Liquidity    *big.Int
}

// FindPool resolves the pool for a token pair and fee tier through the V3 factory.
func FindPool(ctx context.Context, caller ethereum.ContractCaller, factory, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	factoryABI, err := V3FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := callMethod(ctx, caller, factory, factoryABI, "getPool", nil, tokenA, tokenB, new(big.Int).SetUint64(uint64(fee)))
	if err != nil {
		return common.Address{}, err
	}
	pool, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s/%s fee %d", ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), fee)
	}
	return pool, nil
}

// FetchPoolMeta loads immutable pool metadata from chain and warms the token cache.
func FetchPoolMeta(ctx context.Context, caller ethereum.ContractCaller, pool common.Address, tokenCache *TokenMetaCache, logger *zap.Logger) (model.PoolMeta, error) {
	if caller == nil {
		return model.PoolMeta{}, fmt.Errorf("contract caller is nil")
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callMethod(ctx, caller, pool, poolABI, "token0", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, poolABI, "token1", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token1: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, poolABI, "fee", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("fee: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, poolABI, "tickSpacing", nil)
	if err != nil {
		return model.PoolMeta{}, err
	}
	tickSpacingInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}
	tickSpacing, err := int24FromBig(tickSpacingInt)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}

	meta := model.PoolMeta{
		Address:     pool.Hex(),
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(feeInt.Uint64()),
		TickSpacing: tickSpacing,
	}

	if tokenCache != nil {
		log := logger
		if log == nil {
			log = zap.NewNop()
		}
		for _, token := range []common.Address{token0, token1} {
			if _, ok := tokenCache.Get(token); ok {
				continue
			}
			tokenMeta, err := FetchTokenMeta(ctx, caller, token, log)
			if err != nil {
				log.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
				continue
			}
			tokenCache.Set(token, tokenMeta)
		}
	}

	return meta, nil
}

// FetchPoolState reads slot0 and active liquidity. A nil block reads the latest state.
func FetchPoolState(ctx context.Context, caller ethereum.ContractCaller, pool common.Address, block *big.Int) (PoolState, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := callMethod(ctx, caller, pool, poolABI, "slot0", block)
	if err != nil {
		return PoolState{}, err
	}
	if len(values) < 2 {
		return PoolState{}, fmt.Errorf("unexpected slot0 values: %d", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 sqrtPriceX96: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}

	values, err = callMethod(ctx, caller, pool, poolABI, "liquidity", block)
	if err != nil {
		return PoolState{}, err
	}
	liquidity, err := asBigInt(values[0])
	if err != nil {
		return PoolState{}, fmt.Errorf("liquidity: %w", err)
	}

	state := PoolState{SqrtPriceX96: sqrtPrice, Tick: tick, Liquidity: liquidity}
	if block != nil {
		state.BlockNumber = block.Uint64()
	}
	return state, nil
}

// FetchTokenMeta loads token metadata via ERC20 calls, falling back to bytes32 getters.
func FetchTokenMeta(ctx context.Context, caller ethereum.ContractCaller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: token.Hex()}
	if caller == nil {
		return meta, fmt.Errorf("contract caller is nil")
	}

	stringABI, err := ERC20ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	values, err := callMethod(ctx, caller, token, stringABI, "decimals", nil)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	if values, err := callMethod(ctx, caller, token, stringABI, "symbol", nil); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := callMethod(ctx, caller, token, bytes32ABI, "symbol", nil); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else if logger != nil {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if values, err := callMethod(ctx, caller, token, stringABI, "name", nil); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := callMethod(ctx, caller, token, bytes32ABI, "name", nil); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else if logger != nil {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	return meta, nil
}

func callMethod(ctx context.Context, caller ethereum.ContractCaller, to common.Address, parsed abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
