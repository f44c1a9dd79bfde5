package reader

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	sccommon "github.com/scprotocol/scctl/common"
)

var ErrNoNodes = errors.New("no nodes configured")

// EthReader sends every read to all of its nodes and takes the first
// successful answer, so one slow or broken node doesn't break scctl.
type EthReader struct {
	nodes []EthereumNode
	// multicall is the network's multicall contract, zero when the network
	// has none.
	multicall common.Address
}

func NewEthReaderGeneric(nodes map[string]string, multicall string) *EthReader {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	ns := make([]EthereumNode, 0, len(nodes))
	for _, name := range names {
		ns = append(ns, NewOneNodeReader(name, nodes[name]))
	}
	return NewEthReaderWithNodes(ns, multicall)
}

// NewEthReaderWithNodes is mostly useful to plug in fake nodes.
func NewEthReaderWithNodes(nodes []EthereumNode, multicall string) *EthReader {
	er := &EthReader{nodes: nodes}
	if multicall != "" {
		er.multicall = common.HexToAddress(multicall)
	}
	return er
}

func (er *EthReader) Nodes() []EthereumNode {
	return er.nodes
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResponse[T any] struct {
	Value T
	Error error
}

// readFromAny runs read against every node concurrently and returns the
// first success. When all nodes fail their errors are joined.
func readFromAny[T any](
	ctx context.Context,
	nodes []EthereumNode,
	read func(context.Context, EthereumNode) (T, error),
) (T, error) {
	var zero T
	if len(nodes) == 0 {
		return zero, ErrNoNodes
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan nodeResponse[T], len(nodes))
	for i := range nodes {
		n := nodes[i]
		go func() {
			v, err := read(ctx, n)
			resCh <- nodeResponse[T]{
				Value: v,
				Error: wrapError(err, n.NodeName()),
			}
		}()
	}
	errs := []error{}
	for i := 0; i < len(nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Value, nil
		}
		errs = append(errs, result.Error)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) ([]byte, error) {
		return n.CallContract(ctx, msg)
	})
}

func (er *EthReader) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.EstimateGas(ctx, msg)
	})
}

func (er *EthReader) GetBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.BalanceAt(ctx, account)
	})
}

func (er *EthReader) GetPendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.PendingNonceAt(ctx, account)
	})
}

func (er *EthReader) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.SuggestGasPrice(ctx)
	})
}

func (er *EthReader) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.SuggestGasTipCap(ctx)
	})
}

func (er *EthReader) LatestHeader(ctx context.Context) (*types.Header, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(ctx, nil)
	})
}

type txByHash struct {
	tx        *types.Transaction
	isPending bool
}

func (er *EthReader) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	res, err := readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (txByHash, error) {
		tx, pending, err := n.TransactionByHash(ctx, hash)
		return txByHash{tx, pending}, err
	})
	return res.tx, res.isPending, err
}

func (er *EthReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return readFromAny(ctx, er.nodes, func(ctx context.Context, n EthereumNode) (*types.Receipt, error) {
		return n.TransactionReceipt(ctx, hash)
	})
}

// SuggestedGasSettings returns the max fee and tip to use for a dynamic fee
// tx. The max fee leaves room for the base fee to double.
func (er *EthReader) SuggestedGasSettings(ctx context.Context) (maxFee, tip *big.Int, err error) {
	header, err := er.LatestHeader(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't get latest header: %w", err)
	}
	if header.BaseFee == nil {
		return nil, nil, fmt.Errorf("network doesn't support dynamic fee txs")
	}
	tip, err = er.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't get gas tip suggestion: %w", err)
	}
	maxFee = new(big.Int).Mul(header.BaseFee, big.NewInt(2))
	maxFee.Add(maxFee, tip)
	return maxFee, tip, nil
}

// TxInfoFromHash reports where a tx is in its life cycle.
func (er *EthReader) TxInfoFromHash(ctx context.Context, hash common.Hash) (sccommon.TxInfo, error) {
	tx, isPending, err := er.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return sccommon.TxInfo{Status: sccommon.TxStatusNotFound}, nil
		}
		return sccommon.TxInfo{Status: sccommon.TxStatusError}, err
	}
	if tx == nil {
		return sccommon.TxInfo{Status: sccommon.TxStatusNotFound}, nil
	}
	if isPending {
		return sccommon.TxInfo{Status: sccommon.TxStatusPending, Tx: tx}, nil
	}

	receipt, err := er.TransactionReceipt(ctx, hash)
	if receipt == nil {
		// mined according to one node while another doesn't have the
		// receipt yet
		return sccommon.TxInfo{Status: sccommon.TxStatusPending, Tx: tx}, err
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return sccommon.TxInfo{Status: sccommon.TxStatusDone, Tx: tx, Receipt: receipt}, nil
	}
	return sccommon.TxInfo{Status: sccommon.TxStatusReverted, Tx: tx, Receipt: receipt}, nil
}
