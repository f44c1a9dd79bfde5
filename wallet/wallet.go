package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/scprotocol/scctl/contracts"
)

var (
	ErrReadOnly    = errors.New("wallet is read only, configure a private key or key file to send transactions")
	ErrTxReverted  = errors.New("transaction reverted")
	ErrTxLost      = errors.New("transaction was never seen by any node")
	ErrNotAccepted = errors.New("no node accepted the transaction")
)

// Wallet is the connected account. ok is false when nothing is connected.
type Wallet interface {
	Address() (addr common.Address, ok bool)
}

// Call is one state changing contract call.
type Call struct {
	To     common.Address
	ABI    *abi.ABI
	Method string
	Args   []interface{}
	Value  *big.Int
}

func NewCall(c contracts.Contract, method string, args ...interface{}) Call {
	return Call{
		To:     c.Address,
		ABI:    c.ABI,
		Method: method,
		Args:   args,
	}
}

func (c Call) Data() ([]byte, error) {
	return c.ABI.Pack(c.Method, c.Args...)
}

// Pending is a broadcasted tx.
type Pending interface {
	Hash() common.Hash
	// Wait blocks until the tx is mined. A reverted tx is returned as an
	// error wrapping ErrTxReverted along with its receipt.
	Wait(ctx context.Context) (*types.Receipt, error)
}

// Sender submits calls on behalf of the connected account.
type Sender interface {
	Wallet
	Send(ctx context.Context, call Call) (Pending, error)
}

// WatchWallet follows an address without being able to sign for it.
type WatchWallet struct {
	address common.Address
	set     bool
}

func NewWatchWallet(addr common.Address) *WatchWallet {
	return &WatchWallet{address: addr, set: addr != (common.Address{})}
}

// Disconnected is a wallet with no account.
func Disconnected() *WatchWallet {
	return &WatchWallet{}
}

func (w *WatchWallet) Address() (common.Address, bool) {
	return w.address, w.set
}

func (w *WatchWallet) Send(context.Context, Call) (Pending, error) {
	return nil, ErrReadOnly
}
