package txflow

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/position"
	"github.com/scprotocol/scctl/wallet"
)

// AllowanceReader reads ERC20 allowances. *reader.EthReader is one.
type AllowanceReader interface {
	ERC20Allowance(ctx context.Context, token contracts.Contract, owner, spender common.Address) (*big.Int, error)
}

// Transition is sent to observers on every state change.
type Transition struct {
	InvocationID string
	Kind         Kind
	Asset        contracts.Asset
	From         State
	To           State
	// TxHash is the tx that was just sent or mined, zero when none.
	TxHash common.Hash
}

// Sent is true for the notification of a broadcasted tx, which doesn't
// change the state.
func (t Transition) Sent() bool {
	return t.From == t.To && t.TxHash != (common.Hash{})
}

type Observer func(Transition)

// Result is the outcome of one Execute.
type Result struct {
	InvocationID string
	// Skipped is set when the amount was invalid and nothing happened.
	Skipped    bool
	State      State
	ApprovalTx common.Hash
	Tx         common.Hash
	Receipt    *types.Receipt
}

// Hook runs one kind of action: approve when the engine needs an
// allowance, then the engine call. A hook runs one execution at a time;
// different hooks are independent of each other.
type Hook struct {
	kind       Kind
	registry   *contracts.Registry
	sender     wallet.Sender
	allowances AllowanceReader

	mu        sync.Mutex
	state     State
	running   bool
	observers []Observer
}

func NewHook(kind Kind, registry *contracts.Registry, sender wallet.Sender, allowances AllowanceReader) *Hook {
	return &Hook{
		kind:       kind,
		registry:   registry,
		sender:     sender,
		allowances: allowances,
		state:      Idle(),
	}
}

func (h *Hook) Kind() Kind {
	return h.kind
}

func (h *Hook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Observe registers fn for every future transition.
func (h *Hook) Observe(fn Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// applyLocked moves to t.To and returns the observers to notify. h.mu must
// be held.
func (h *Hook) applyLocked(t *Transition) []Observer {
	t.From = h.state
	h.state = t.To
	return append([]Observer{}, h.observers...)
}

func notify(observers []Observer, t Transition) {
	for _, fn := range observers {
		fn(t)
	}
}

func (h *Hook) transition(t Transition) {
	h.mu.Lock()
	observers := h.applyLocked(&t)
	h.mu.Unlock()
	notify(observers, t)
}

// Reset brings a finished hook back to idle, as when the user edits the
// amount. It does nothing while a transaction is in flight.
func (h *Hook) Reset() {
	h.mu.Lock()
	if h.running || !h.state.Step().Terminal() {
		h.mu.Unlock()
		return
	}
	t := Transition{Kind: h.kind, To: Idle()}
	observers := h.applyLocked(&t)
	h.mu.Unlock()
	notify(observers, t)
}

// Execute runs the action for amount, a human readable decimal string.
// An invalid amount is skipped without touching the state. Every wallet or
// chain failure ends in the error state and is reported in the Result, the
// returned error is only for calls that never started: ErrBusy and
// ErrUnsupportedAsset.
func (h *Hook) Execute(ctx context.Context, asset contracts.Asset, amount string) (Result, error) {
	value, err := position.ParseAmount(amount, asset.Decimals())
	if err != nil {
		slog.Debug("ignoring invalid amount", "action", h.kind, "amount", amount, "error", err)
		return Result{Skipped: true, State: h.State()}, nil
	}
	plan, err := h.kind.plan(h.registry, asset, value)
	if err != nil {
		return Result{State: h.State()}, err
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return Result{State: h.State()}, ErrBusy
	}
	h.running = true
	terminal := h.state.Step().Terminal()
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	id := uuid.NewString()
	logger := slog.With("invocation", id, "action", h.kind, "asset", asset, "amount", amount)
	if terminal {
		h.transition(Transition{InvocationID: id, Kind: h.kind, Asset: asset, To: Idle()})
	}
	res := Result{InvocationID: id}
	fail := func(at Step, err error) (Result, error) {
		msg := ErrorMessage(err)
		logger.Warn("transaction failed", "step", at, "error", err)
		h.transition(Transition{InvocationID: id, Kind: h.kind, Asset: asset, To: Failed(at, msg)})
		res.State = h.State()
		return res, nil
	}

	owner, ok := h.sender.Address()
	if !ok {
		return fail(StepIdle, ErrNotConnected)
	}

	if plan.Approval != nil && h.needsApproval(ctx, logger, owner, plan.Approval) {
		h.transition(Transition{InvocationID: id, Kind: h.kind, Asset: asset, To: Approving()})
		call := wallet.NewCall(plan.Approval.Token, "approve", plan.Approval.Spender, plan.Approval.Amount)
		hash, _, err := h.send(ctx, id, asset, call)
		res.ApprovalTx = hash
		if err != nil {
			return fail(StepApproving, err)
		}
		logger.Info("approval confirmed", "tx", hash.Hex())
	}

	h.transition(Transition{InvocationID: id, Kind: h.kind, Asset: asset, To: Executing()})
	hash, receipt, err := h.send(ctx, id, asset, plan.Call)
	res.Tx = hash
	res.Receipt = receipt
	if err != nil {
		return fail(StepExecuting, err)
	}
	logger.Info("transaction confirmed", "tx", hash.Hex())
	h.transition(Transition{InvocationID: id, Kind: h.kind, Asset: asset, To: Success(), TxHash: hash})
	res.State = h.State()
	return res, nil
}

// needsApproval is true unless the current allowance covers the amount.
// When the allowance can't be read we approve anyway.
func (h *Hook) needsApproval(ctx context.Context, logger *slog.Logger, owner common.Address, a *Approval) bool {
	allowance, err := h.allowances.ERC20Allowance(ctx, a.Token, owner, a.Spender)
	if err != nil {
		logger.Warn("couldn't read allowance, approving", "token", a.Token.Name, "error", err)
		return true
	}
	return allowance.Cmp(a.Amount) < 0
}

func (h *Hook) send(ctx context.Context, id string, asset contracts.Asset, call wallet.Call) (common.Hash, *types.Receipt, error) {
	pending, err := h.sender.Send(ctx, call)
	if err != nil {
		return common.Hash{}, nil, err
	}
	hash := pending.Hash()
	h.notifySent(id, asset, hash)
	receipt, err := pending.Wait(ctx)
	if err != nil {
		return hash, receipt, err
	}
	if receipt != nil && receipt.Status != types.ReceiptStatusSuccessful {
		return hash, receipt, fmt.Errorf("%s (%s): %w", call.Method, hash.Hex(), wallet.ErrTxReverted)
	}
	return hash, receipt, nil
}

// notifySent tells observers about a broadcasted tx without changing the
// state.
func (h *Hook) notifySent(id string, asset contracts.Asset, hash common.Hash) {
	state := h.State()
	h.mu.Lock()
	observers := append([]Observer{}, h.observers...)
	h.mu.Unlock()
	for _, fn := range observers {
		fn(Transition{InvocationID: id, Kind: h.kind, Asset: asset, From: state, To: state, TxHash: hash})
	}
}
