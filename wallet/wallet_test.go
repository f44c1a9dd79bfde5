package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	sccommon "github.com/scprotocol/scctl/common"
	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/networks"
	"github.com/scprotocol/scctl/util/account"
)

const anvilKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type fakeChain struct {
	nonce    uint64
	gas      uint64
	gasErr   error
	baseFee  bool
	estimate []ethereum.CallMsg
}

func (f *fakeChain) GetPendingNonce(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeChain) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimate = append(f.estimate, msg)
	return f.gas, f.gasErr
}

func (f *fakeChain) SuggestedGasSettings(context.Context) (*big.Int, *big.Int, error) {
	if !f.baseFee {
		return nil, nil, errors.New("network doesn't support dynamic fee txs")
	}
	return big.NewInt(3_000_000_000), big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

type fakeBroadcaster struct {
	accept bool
	txs    []*types.Transaction
}

func (f *fakeBroadcaster) BroadcastTx(_ context.Context, tx *types.Transaction) (bool, error) {
	f.txs = append(f.txs, tx)
	if !f.accept {
		return false, errors.New("nonce too low")
	}
	return true, nil
}

type fakeWaiter struct {
	status sccommon.TxStatus
}

func (f *fakeWaiter) BlockingWait(context.Context, common.Hash) (sccommon.TxInfo, error) {
	return sccommon.TxInfo{Status: f.status, Receipt: &types.Receipt{Status: 1}}, nil
}

func newTestWallet(t *testing.T, chain *fakeChain, b *fakeBroadcaster, w *fakeWaiter) *KeyWallet {
	signer, err := account.NewHexSigner(anvilKey)
	require.NoError(t, err)
	return NewKeyWallet(signer, 31337, chain, b, w)
}

func engineCall(t *testing.T) Call {
	reg, err := contracts.NewRegistry(networks.NewAnvil(), contracts.KnownDeployment(31337))
	require.NoError(t, err)
	return NewCall(reg.Engine(), "mintSc", big.NewInt(100))
}

func TestKeyWalletSendsDynamicFeeTx(t *testing.T) {
	chain := &fakeChain{nonce: 7, gas: 100_000, baseFee: true}
	b := &fakeBroadcaster{accept: true}
	w := newTestWallet(t, chain, b, &fakeWaiter{status: sccommon.TxStatusDone})

	p, err := w.Send(context.Background(), engineCall(t))
	require.NoError(t, err)
	require.Len(t, b.txs, 1)
	tx := b.txs[0]
	require.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, uint64(120_000), tx.Gas())
	require.Equal(t, tx.Hash(), p.Hash())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), tx)
	require.NoError(t, err)
	addr, ok := w.Address()
	require.True(t, ok)
	require.Equal(t, addr, from)

	receipt, err := p.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, receipt)
}

func TestKeyWalletFallsBackToLegacyTx(t *testing.T) {
	chain := &fakeChain{gas: 50_000}
	b := &fakeBroadcaster{accept: true}
	w := newTestWallet(t, chain, b, &fakeWaiter{status: sccommon.TxStatusDone})

	_, err := w.Send(context.Background(), engineCall(t))
	require.NoError(t, err)
	require.Equal(t, uint8(types.LegacyTxType), b.txs[0].Type())
	require.Equal(t, big.NewInt(2_000_000_000), b.txs[0].GasPrice())
}

func TestKeyWalletNonceAdvancesBetweenSends(t *testing.T) {
	chain := &fakeChain{nonce: 3, gas: 21_000, baseFee: true}
	b := &fakeBroadcaster{accept: true}
	w := newTestWallet(t, chain, b, &fakeWaiter{status: sccommon.TxStatusDone})

	_, err := w.Send(context.Background(), engineCall(t))
	require.NoError(t, err)
	_, err = w.Send(context.Background(), engineCall(t))
	require.NoError(t, err)
	require.Equal(t, uint64(3), b.txs[0].Nonce())
	require.Equal(t, uint64(4), b.txs[1].Nonce())
}

func TestKeyWalletEstimateFailureIsNotBroadcasted(t *testing.T) {
	chain := &fakeChain{gasErr: errors.New("execution reverted"), baseFee: true}
	b := &fakeBroadcaster{accept: true}
	w := newTestWallet(t, chain, b, &fakeWaiter{})

	_, err := w.Send(context.Background(), engineCall(t))
	require.ErrorContains(t, err, "gas estimation failed")
	require.Empty(t, b.txs)
}

func TestKeyWalletRejectedBroadcast(t *testing.T) {
	chain := &fakeChain{gas: 21_000, baseFee: true}
	w := newTestWallet(t, chain, &fakeBroadcaster{}, &fakeWaiter{})

	_, err := w.Send(context.Background(), engineCall(t))
	require.ErrorContains(t, err, "nonce too low")
}

func TestPendingRevertedIsError(t *testing.T) {
	chain := &fakeChain{gas: 21_000, baseFee: true}
	w := newTestWallet(t, chain, &fakeBroadcaster{accept: true}, &fakeWaiter{status: sccommon.TxStatusReverted})

	p, err := w.Send(context.Background(), engineCall(t))
	require.NoError(t, err)
	_, err = p.Wait(context.Background())
	require.ErrorIs(t, err, ErrTxReverted)
}

func TestWatchWalletIsReadOnly(t *testing.T) {
	addr := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	w := NewWatchWallet(addr)
	got, ok := w.Address()
	require.True(t, ok)
	require.Equal(t, addr, got)

	_, err := w.Send(context.Background(), Call{})
	require.ErrorIs(t, err, ErrReadOnly)

	_, ok = Disconnected().Address()
	require.False(t, ok)
}
