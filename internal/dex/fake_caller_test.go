package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// fakeCaller answers eth_call by exact calldata first, then by selector.
type fakeCaller struct {
	responses map[string][]byte
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{responses: make(map[string][]byte)}
}

func callKey(to common.Address, data []byte) string {
	return strings.ToLower(to.Hex()) + ":" + hexutil.Encode(data)
}

// on registers outputs for any call of method on to.
func (f *fakeCaller) on(t *testing.T, to common.Address, parsed abi.ABI, method string, outputs ...interface{}) {
	t.Helper()
	data, err := parsed.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method, err)
	}
	f.responses[callKey(to, parsed.Methods[method].ID)] = data
}

// onCall registers outputs for a call of method with specific arguments.
func (f *fakeCaller) onCall(t *testing.T, to common.Address, parsed abi.ABI, method string, args []interface{}, outputs ...interface{}) {
	t.Helper()
	input, err := parsed.Pack(method, args...)
	if err != nil {
		t.Fatalf("pack %s input: %v", method, err)
	}
	data, err := parsed.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method, err)
	}
	f.responses[callKey(to, input)] = data
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("malformed call")
	}
	if resp, ok := f.responses[callKey(*msg.To, msg.Data)]; ok {
		return resp, nil
	}
	if resp, ok := f.responses[callKey(*msg.To, msg.Data[:4])]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("execution reverted")
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func topicFromInt24(value int32) common.Hash {
	bigVal := big.NewInt(int64(value))
	if value < 0 {
		bigVal = new(big.Int).Add(bigVal, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return common.BigToHash(bigVal)
}
