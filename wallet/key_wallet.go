package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	sccommon "github.com/scprotocol/scctl/common"
	"github.com/scprotocol/scctl/util/account"
)

// GasMarginPercent is added on top of the node's gas estimate.
const GasMarginPercent = 20

type ChainReader interface {
	GetPendingNonce(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestedGasSettings(ctx context.Context) (maxFee, tip *big.Int, err error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

type TxBroadcaster interface {
	BroadcastTx(ctx context.Context, tx *types.Transaction) (bool, error)
}

type TxWaiter interface {
	BlockingWait(ctx context.Context, hash common.Hash) (sccommon.TxInfo, error)
}

// KeyWallet signs with a local key and sends through every configured node.
type KeyWallet struct {
	signer      account.Signer
	chainID     *big.Int
	reader      ChainReader
	broadcaster TxBroadcaster
	waiter      TxWaiter

	mu sync.Mutex
	// next nonce we handed out, so back to back sends don't collide before
	// nodes see the first tx
	nextNonce *uint64
}

func NewKeyWallet(
	signer account.Signer,
	chainID uint64,
	reader ChainReader,
	broadcaster TxBroadcaster,
	waiter TxWaiter,
) *KeyWallet {
	return &KeyWallet{
		signer:      signer,
		chainID:     new(big.Int).SetUint64(chainID),
		reader:      reader,
		broadcaster: broadcaster,
		waiter:      waiter,
	}
}

func (w *KeyWallet) Address() (common.Address, bool) {
	return w.signer.Address(), true
}

func (w *KeyWallet) nonce(ctx context.Context) (uint64, error) {
	n, err := w.reader.GetPendingNonce(ctx, w.signer.Address())
	if err != nil {
		return 0, fmt.Errorf("couldn't get nonce: %w", err)
	}
	if w.nextNonce != nil && *w.nextNonce > n {
		n = *w.nextNonce
	}
	return n, nil
}

func addGasMargin(gas uint64) uint64 {
	return gas + gas*GasMarginPercent/100
}

func (w *KeyWallet) buildTx(ctx context.Context, call Call, nonce uint64) (*types.Transaction, error) {
	data, err := call.Data()
	if err != nil {
		return nil, fmt.Errorf("couldn't pack %s: %w", call.Method, err)
	}
	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}
	to := call.To
	gas, err := w.reader.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.signer.Address(),
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: gas estimation failed: %w", call.Method, err)
	}
	gas = addGasMargin(gas)

	maxFee, tip, err := w.reader.SuggestedGasSettings(ctx)
	if err == nil {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   w.chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: maxFee,
			Gas:       gas,
			To:        &to,
			Value:     value,
			Data:      data,
		}), nil
	}
	slog.Debug("dynamic fee unavailable, using legacy tx", "error", err)
	price, err := w.reader.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get gas price: %w", err)
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: price,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	}), nil
}

func (w *KeyWallet) Send(ctx context.Context, call Call) (Pending, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	nonce, err := w.nonce(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := w.buildTx(ctx, call, nonce)
	if err != nil {
		return nil, err
	}
	signed, err := w.signer.SignTx(tx, w.chainID)
	if err != nil {
		return nil, fmt.Errorf("couldn't sign tx: %w", err)
	}
	ok, err := w.broadcaster.BroadcastTx(ctx, signed)
	if !ok {
		if err == nil {
			err = ErrNotAccepted
		}
		return nil, fmt.Errorf("%s: broadcasting failed: %w", call.Method, err)
	}
	next := nonce + 1
	w.nextNonce = &next
	slog.Info("tx broadcasted",
		"method", call.Method,
		"to", call.To.Hex(),
		"hash", signed.Hash().Hex(),
		"nonce", nonce,
		"gas", signed.Gas(),
	)
	return &pendingTx{hash: signed.Hash(), method: call.Method, waiter: w.waiter}, nil
}

type pendingTx struct {
	hash   common.Hash
	method string
	waiter TxWaiter
}

func (p *pendingTx) Hash() common.Hash {
	return p.hash
}

func (p *pendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	info, err := p.waiter.BlockingWait(ctx, p.hash)
	if err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", p.hash.Hex(), err)
	}
	switch info.Status {
	case sccommon.TxStatusDone:
		return info.Receipt, nil
	case sccommon.TxStatusReverted:
		return info.Receipt, fmt.Errorf("%s (%s): %w", p.method, p.hash.Hex(), ErrTxReverted)
	case sccommon.TxStatusLost:
		return nil, fmt.Errorf("%s (%s): %w", p.method, p.hash.Hex(), ErrTxLost)
	}
	return nil, fmt.Errorf("%s (%s): unexpected status %s", p.method, p.hash.Hex(), info.Status)
}
