package reader

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const TIMEOUT time.Duration = 4 * time.Second

// OneNodeReader talks to a single node. The connection is opened lazily on
// first use.
type OneNodeReader struct {
	nodeName  string
	nodeURL   string
	ethClient *ethclient.Client
	mu        sync.Mutex
}

func NewOneNodeReader(name, url string) *OneNodeReader {
	return &OneNodeReader{
		nodeName: name,
		nodeURL:  url,
	}
}

func (onr *OneNodeReader) NodeName() string {
	return onr.nodeName
}

func (onr *OneNodeReader) NodeURL() string {
	return onr.nodeURL
}

func (onr *OneNodeReader) EthClient() (*ethclient.Client, error) {
	onr.mu.Lock()
	defer onr.mu.Unlock()
	if onr.ethClient != nil {
		return onr.ethClient, nil
	}
	client, err := ethclient.Dial(onr.nodeURL)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to %s: %w", onr.nodeName, err)
	}
	onr.ethClient = client
	return client, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, TIMEOUT)
}

func (onr *OneNodeReader) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.CallContract(timeout, msg, nil)
}

func (onr *OneNodeReader) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return 0, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.EstimateGas(timeout, msg)
}

func (onr *OneNodeReader) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.BalanceAt(timeout, account, nil)
}

func (onr *OneNodeReader) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return 0, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.PendingNonceAt(timeout, account)
}

func (onr *OneNodeReader) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.SuggestGasPrice(timeout)
}

func (onr *OneNodeReader) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.SuggestGasTipCap(timeout)
}

func (onr *OneNodeReader) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.HeaderByNumber(timeout, number)
}

func (onr *OneNodeReader) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, false, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.TransactionByHash(timeout, hash)
}

func (onr *OneNodeReader) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ethcli, err := onr.EthClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := withTimeout(ctx)
	defer cancel()
	return ethcli.TransactionReceipt(timeout, hash)
}
