package txflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/networks"
	"github.com/scprotocol/scctl/wallet"
)

var owner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

const (
	time2s = 2 * time.Second
	tick   = 5 * time.Millisecond
)

func encodeString(s string) []byte {
	typ, _ := abi.NewType("string", "", nil)
	b, err := abi.Arguments{{Type: typ}}.Pack(s)
	if err != nil {
		panic(err)
	}
	return b
}

// dataError mimics the json rpc error nodes return for reverts.
type dataError struct {
	msg  string
	data string
}

func (e *dataError) Error() string          { return e.msg }
func (e *dataError) ErrorData() interface{} { return e.data }

type fakePending struct {
	hash common.Hash
	err  error
	// block until closed, when set
	hold chan struct{}
}

func (p *fakePending) Hash() common.Hash { return p.hash }

func (p *fakePending) Wait(ctx context.Context) (*types.Receipt, error) {
	if p.hold != nil {
		<-p.hold
	}
	if p.err != nil {
		return nil, p.err
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: p.hash}, nil
}

// fakeChain is both the wallet and the allowance reader. Mined approvals
// update the allowance.
type fakeChain struct {
	mu         sync.Mutex
	connected  bool
	allowances map[common.Address]*big.Int
	sent       []wallet.Call
	// errors returned by Wait, consumed in order per method
	waitErrs map[string][]error
	sendErrs map[string]error
	hold     chan struct{}
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		connected:  true,
		allowances: map[common.Address]*big.Int{},
		waitErrs:   map[string][]error{},
		sendErrs:   map[string]error{},
	}
}

func (f *fakeChain) Address() (common.Address, bool) {
	return owner, f.connected
}

func (f *fakeChain) Send(_ context.Context, call wallet.Call) (wallet.Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErrs[call.Method]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, call)
	p := &fakePending{hash: common.BigToHash(big.NewInt(int64(len(f.sent)))), hold: f.hold}
	if errs := f.waitErrs[call.Method]; len(errs) > 0 {
		p.err = errs[0]
		f.waitErrs[call.Method] = errs[1:]
	}
	if call.Method == "approve" && p.err == nil {
		f.allowances[call.To] = call.Args[1].(*big.Int)
	}
	return p, nil
}

func (f *fakeChain) ERC20Allowance(_ context.Context, token contracts.Contract, _, _ common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.allowances[token.Address]; ok {
		return a, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeChain) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := []string{}
	for _, c := range f.sent {
		res = append(res, c.Method)
	}
	return res
}

func testRegistry(t *testing.T) *contracts.Registry {
	r, err := contracts.NewRegistry(networks.NewAnvil(), contracts.KnownDeployment(31337))
	require.NoError(t, err)
	return r
}

func newTestHook(t *testing.T, kind Kind, chain *fakeChain) (*Hook, *[]Step) {
	h := NewHook(kind, testRegistry(t), chain, chain)
	steps := []Step{}
	h.Observe(func(tr Transition) {
		if !tr.Sent() {
			steps = append(steps, tr.To.Step())
		}
	})
	return h, &steps
}

func TestInvalidAmountIsSkipped(t *testing.T) {
	for _, kind := range Kinds() {
		asset := contracts.SC
		if kind == Deposit || kind == Withdraw {
			asset = contracts.WETH
		}
		for _, amount := range []string{"", "0", "-1", "abc", "0.000"} {
			chain := newFakeChain()
			h, steps := newTestHook(t, kind, chain)
			res, err := h.Execute(context.Background(), asset, amount)
			require.NoError(t, err)
			require.True(t, res.Skipped)
			require.Equal(t, StepIdle, h.State().Step())
			require.Empty(t, chain.methods())
			require.Empty(t, *steps)
		}
	}
}

func TestDepositApprovesThenExecutes(t *testing.T) {
	chain := newFakeChain()
	h, steps := newTestHook(t, Deposit, chain)

	res, err := h.Execute(context.Background(), contracts.WETH, "1.5")
	require.NoError(t, err)
	require.Equal(t, StepSuccess, res.State.Step())
	require.Equal(t, []Step{StepApproving, StepExecuting, StepSuccess}, *steps)
	require.Equal(t, []string{"approve", "depositCollateral"}, chain.methods())
	require.NotEqual(t, common.Hash{}, res.ApprovalTx)
	require.NotEqual(t, common.Hash{}, res.Tx)
	require.NotEmpty(t, res.InvocationID)

	reg := testRegistry(t)
	approve := chain.sent[0]
	require.Equal(t, reg.Token(contracts.WETH).Address, approve.To)
	require.Equal(t, reg.Engine().Address, approve.Args[0])
	deposit := chain.sent[1]
	require.Equal(t, reg.Engine().Address, deposit.To)
	require.Equal(t, reg.Token(contracts.WETH).Address, deposit.Args[0])
	require.Equal(t, "1500000000000000000", deposit.Args[1].(*big.Int).String())
}

func TestApprovalSkippedWhenAllowanceSuffices(t *testing.T) {
	chain := newFakeChain()
	reg := testRegistry(t)
	chain.allowances[reg.Token(contracts.SC).Address] = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	h, steps := newTestHook(t, Burn, chain)

	res, err := h.Execute(context.Background(), contracts.SC, "100")
	require.NoError(t, err)
	require.Equal(t, StepSuccess, res.State.Step())
	require.Equal(t, []Step{StepExecuting, StepSuccess}, *steps)
	require.Equal(t, []string{"burnSc"}, chain.methods())
	require.Equal(t, common.Hash{}, res.ApprovalTx)
}

func TestWithdrawAndMintNeverApprove(t *testing.T) {
	for kind, asset := range map[Kind]contracts.Asset{Withdraw: contracts.WBTC, Mint: contracts.SC} {
		chain := newFakeChain()
		h, steps := newTestHook(t, kind, chain)
		res, err := h.Execute(context.Background(), asset, "2")
		require.NoError(t, err)
		require.Equal(t, StepSuccess, res.State.Step())
		require.Equal(t, []Step{StepExecuting, StepSuccess}, *steps)
		require.Len(t, chain.methods(), 1)
	}
}

func TestUnsupportedAsset(t *testing.T) {
	chain := newFakeChain()
	h, _ := newTestHook(t, Mint, chain)
	_, err := h.Execute(context.Background(), contracts.WETH, "1")
	require.ErrorIs(t, err, ErrUnsupportedAsset)

	h, _ = newTestHook(t, Deposit, chain)
	_, err = h.Execute(context.Background(), contracts.SC, "1")
	require.ErrorIs(t, err, ErrUnsupportedAsset)
	require.Empty(t, chain.methods())
}

func TestApprovalFailureStopsBeforeExecution(t *testing.T) {
	chain := newFakeChain()
	chain.sendErrs["approve"] = errors.New("user rejected the request")
	h, steps := newTestHook(t, Deposit, chain)

	res, err := h.Execute(context.Background(), contracts.WETH, "1")
	require.NoError(t, err)
	require.Equal(t, []Step{StepApproving, StepError}, *steps)
	msg, ok := res.State.Message()
	require.True(t, ok)
	require.Equal(t, "user rejected the request", msg)
	require.Equal(t, StepApproving, res.State.FailedAt())
	require.Empty(t, chain.methods())
}

func TestExecutionRevertThenRetry(t *testing.T) {
	chain := newFakeChain()
	revert := &dataError{
		msg:  "execution reverted",
		data: hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, encodeString("Insufficient collateral")...)),
	}
	chain.waitErrs["depositCollateral"] = []error{revert}
	h, steps := newTestHook(t, Deposit, chain)

	res, err := h.Execute(context.Background(), contracts.WETH, "1")
	require.NoError(t, err)
	require.Equal(t, StepError, res.State.Step())
	msg, _ := res.State.Message()
	require.Equal(t, "execution reverted: Insufficient collateral", msg)
	require.Equal(t, StepExecuting, res.State.FailedAt())
	require.Equal(t, []Step{StepApproving, StepExecuting, StepError}, *steps)

	*steps = nil
	res, err = h.Execute(context.Background(), contracts.WETH, "1")
	require.NoError(t, err)
	require.Equal(t, StepSuccess, res.State.Step())
	// the approval from the first attempt still covers the amount
	require.Equal(t, []Step{StepIdle, StepExecuting, StepSuccess}, *steps)
	require.Equal(t, []string{"approve", "depositCollateral", "depositCollateral"}, chain.methods())
}

func TestSecondExecutionOfSameHookIsBusy(t *testing.T) {
	chain := newFakeChain()
	chain.hold = make(chan struct{})
	h, _ := newTestHook(t, Mint, chain)

	sent := make(chan struct{})
	h.Observe(func(tr Transition) {
		if tr.Sent() {
			close(sent)
		}
	})
	done := make(chan Result)
	go func() {
		res, _ := h.Execute(context.Background(), contracts.SC, "1")
		done <- res
	}()
	<-sent

	_, err := h.Execute(context.Background(), contracts.SC, "1")
	require.ErrorIs(t, err, ErrBusy)
	require.Equal(t, StepExecuting, h.State().Step())
	h.Reset()
	require.Equal(t, StepExecuting, h.State().Step())

	close(chain.hold)
	require.Equal(t, StepSuccess, (<-done).State.Step())
}

func TestDifferentHooksRunConcurrently(t *testing.T) {
	chain := newFakeChain()
	chain.hold = make(chan struct{})
	mint, _ := newTestHook(t, Mint, chain)
	withdraw, _ := newTestHook(t, Withdraw, chain)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], _ = mint.Execute(context.Background(), contracts.SC, "1")
	}()
	go func() {
		defer wg.Done()
		results[1], _ = withdraw.Execute(context.Background(), contracts.WETH, "1")
	}()
	require.Eventually(t, func() bool { return len(chain.methods()) == 2 }, time2s, tick)
	close(chain.hold)
	wg.Wait()
	require.Equal(t, StepSuccess, results[0].State.Step())
	require.Equal(t, StepSuccess, results[1].State.Step())
}

func TestResetAfterTerminalState(t *testing.T) {
	chain := newFakeChain()
	chain.sendErrs["mintSc"] = errors.New("boom")
	h, steps := newTestHook(t, Mint, chain)

	_, err := h.Execute(context.Background(), contracts.SC, "1")
	require.NoError(t, err)
	require.Equal(t, StepError, h.State().Step())
	h.Reset()
	require.Equal(t, StepIdle, h.State().Step())
	require.Equal(t, []Step{StepExecuting, StepError, StepIdle}, *steps)

	// resetting an idle hook is a no-op
	h.Reset()
	require.Len(t, *steps, 3)
}

func TestResetNeverOverridesInFlightExecution(t *testing.T) {
	for i := 0; i < 50; i++ {
		chain := newFakeChain()
		chain.sendErrs["mintSc"] = errors.New("boom")
		h := NewHook(Mint, testRegistry(t), chain, chain)
		_, err := h.Execute(context.Background(), contracts.SC, "1")
		require.NoError(t, err)
		require.Equal(t, StepError, h.State().Step())

		delete(chain.sendErrs, "mintSc")
		chain.hold = make(chan struct{})
		sent := make(chan struct{})
		h.Observe(func(tr Transition) {
			if tr.Sent() {
				close(sent)
			}
		})

		done := make(chan Result)
		go func() {
			res, _ := h.Execute(context.Background(), contracts.SC, "1")
			done <- res
		}()
		reset := make(chan struct{})
		go func() {
			h.Reset()
			close(reset)
		}()
		<-sent
		<-reset

		require.Equal(t, StepExecuting, h.State().Step())
		close(chain.hold)
		require.Equal(t, StepSuccess, (<-done).State.Step())
	}
}

func TestDisconnectedWalletFails(t *testing.T) {
	chain := newFakeChain()
	chain.connected = false
	h, _ := newTestHook(t, Mint, chain)

	res, err := h.Execute(context.Background(), contracts.SC, "1")
	require.NoError(t, err)
	msg, ok := res.State.Message()
	require.True(t, ok)
	require.Equal(t, ErrNotConnected.Error(), msg)
}

func TestReadOnlyWalletFails(t *testing.T) {
	h := NewHook(Mint, testRegistry(t), wallet.NewWatchWallet(owner), newFakeChain())
	res, err := h.Execute(context.Background(), contracts.SC, "1")
	require.NoError(t, err)
	msg, _ := res.State.Message()
	require.Equal(t, wallet.ErrReadOnly.Error(), msg)
}

func TestErrorMessageDecodesCustomErrors(t *testing.T) {
	e := contracts.EngineABI().Errors["StableCoinEngine__BreaksHealthFactor"]
	args, err := e.Inputs.Pack(big.NewInt(123))
	require.NoError(t, err)
	data := append(append([]byte{}, e.ID[:4]...), args...)

	msg := ErrorMessage(fmt.Errorf("mintSc: gas estimation failed: %w", &dataError{msg: "execution reverted", data: hexutil.Encode(data)}))
	require.Equal(t, "execution reverted: StableCoinEngine__BreaksHealthFactor(123)", msg)
}

func TestErrorMessageSanitizes(t *testing.T) {
	msg := ErrorMessage(errors.New("bad\nthing\x1b[31m"))
	require.Equal(t, `bad\nthing\x1b[31m`, msg)

	long := ErrorMessage(errors.New(strings.Repeat("x", 1000)))
	require.Len(t, []rune(long), MaxMessageLength)
	require.True(t, strings.HasSuffix(long, "..."))
}

func TestStateVariant(t *testing.T) {
	_, ok := Success().Message()
	require.False(t, ok)
	require.Equal(t, StepIdle, Executing().FailedAt())
	require.Equal(t, "error(boom)", Failed(StepExecuting, "boom").String())
	require.True(t, StepApproving.Pending())
	require.False(t, StepSuccess.Pending())
	require.True(t, StepError.Terminal())
}
