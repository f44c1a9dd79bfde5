package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/scprotocol/scctl/contracts"
)

// Call is one contract read: method of the contract at Address with Args.
type Call struct {
	Address common.Address
	ABI     *abi.ABI
	Method  string
	Args    []interface{}
}

func NewCall(c contracts.Contract, method string, args ...interface{}) Call {
	return Call{
		Address: c.Address,
		ABI:     c.ABI,
		Method:  method,
		Args:    args,
	}
}

// CallResult holds the unpacked outputs of a Call, or why it failed.
type CallResult struct {
	Values []interface{}
	Err    error
}

func (cr CallResult) OK() bool {
	return cr.Err == nil
}

// ErrCallReverted is wrapped by results of calls that reverted inside a
// multicall batch.
var ErrCallReverted = errors.New("call reverted")

func (c Call) pack() ([]byte, error) {
	data, err := c.ABI.Pack(c.Method, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't pack %s: %w", c.Method, err)
	}
	return data, nil
}

func (c Call) unpack(data []byte) CallResult {
	values, err := c.ABI.Unpack(c.Method, data)
	if err != nil {
		return CallResult{Err: fmt.Errorf("couldn't unpack %s: %w", c.Method, err)}
	}
	return CallResult{Values: values}
}

// ReadContract performs a single read.
func (er *EthReader) ReadContract(ctx context.Context, c Call) CallResult {
	data, err := c.pack()
	if err != nil {
		return CallResult{Err: err}
	}
	to := c.Address
	out, err := er.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return CallResult{Err: fmt.Errorf("%s: %w", c.Method, err)}
	}
	return c.unpack(out)
}

type mcCall struct {
	Target   common.Address
	CallData []byte
}

type mcResult struct {
	Success    bool
	ReturnData []byte
}

// ReadMany reads every call and returns results aligned by index with
// calls. Calls are batched into one multicall tryAggregate when the network
// has a multicall contract, otherwise they are sent concurrently one by one.
// A failed call never fails the others.
func (er *EthReader) ReadMany(ctx context.Context, calls []Call) []CallResult {
	if len(calls) == 0 {
		return []CallResult{}
	}
	if er.multicall == (common.Address{}) {
		return er.readEach(ctx, calls)
	}
	return er.readAggregated(ctx, calls)
}

func (er *EthReader) readEach(ctx context.Context, calls []Call) []CallResult {
	results := make([]CallResult, len(calls))
	wg := sync.WaitGroup{}
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = er.ReadContract(ctx, calls[i])
		}(i)
	}
	wg.Wait()
	return results
}

func failAll(n int, err error) []CallResult {
	results := make([]CallResult, n)
	for i := range results {
		results[i] = CallResult{Err: err}
	}
	return results
}

func (er *EthReader) readAggregated(ctx context.Context, calls []Call) []CallResult {
	results := make([]CallResult, len(calls))
	packed := []mcCall{}
	// index in packed -> index in calls, calls that can't be packed are
	// failed right away and left out of the batch
	positions := []int{}
	for i, c := range calls {
		data, err := c.pack()
		if err != nil {
			results[i] = CallResult{Err: err}
			continue
		}
		packed = append(packed, mcCall{Target: c.Address, CallData: data})
		positions = append(positions, i)
	}
	if len(packed) == 0 {
		return results
	}

	mcABI := contracts.MulticallABI()
	input, err := mcABI.Pack("tryAggregate", false, packed)
	if err != nil {
		return failAll(len(calls), fmt.Errorf("couldn't pack multicall: %w", err))
	}
	to := er.multicall
	out, err := er.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input})
	if err != nil {
		return failAll(len(calls), fmt.Errorf("multicall failed: %w", err))
	}
	values, err := mcABI.Unpack("tryAggregate", out)
	if err != nil || len(values) != 1 {
		return failAll(len(calls), fmt.Errorf("couldn't unpack multicall result: %w", err))
	}
	returned := *abi.ConvertType(values[0], new([]mcResult)).(*[]mcResult)
	if len(returned) != len(packed) {
		return failAll(len(calls), fmt.Errorf(
			"multicall returned %d results for %d calls", len(returned), len(packed),
		))
	}

	for j, r := range returned {
		i := positions[j]
		if !r.Success {
			results[i] = CallResult{Err: revertError(calls[i].Method, r.ReturnData)}
			continue
		}
		results[i] = calls[i].unpack(r.ReturnData)
	}
	return results
}

func revertError(method string, data []byte) error {
	if reason, err := abi.UnpackRevert(data); err == nil {
		return fmt.Errorf("%s: %w: %s", method, ErrCallReverted, reason)
	}
	return fmt.Errorf("%s: %w", method, ErrCallReverted)
}
