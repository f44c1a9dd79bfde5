package snapshot

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/networks"
	"github.com/scprotocol/scctl/util/reader"
	"github.com/scprotocol/scctl/wallet"
)

var user = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type fakeBatch struct {
	registry *contracts.Registry
	values   map[string][]interface{}
	failing  map[string]bool
	balance  *big.Int
	calls    [][]reader.Call
}

func (f *fakeBatch) key(c reader.Call) string {
	if c.Method == "getCollateralBalanceOfUser" {
		a, _ := f.registry.AssetOf(c.Args[1].(common.Address))
		return c.Method + "." + string(a)
	}
	if c.Method == "balanceOf" {
		a, _ := f.registry.AssetOf(c.Address)
		return c.Method + "." + string(a)
	}
	return c.Method
}

func (f *fakeBatch) ReadMany(_ context.Context, calls []reader.Call) []reader.CallResult {
	f.calls = append(f.calls, calls)
	res := make([]reader.CallResult, len(calls))
	for i, c := range calls {
		k := f.key(c)
		if f.failing[k] {
			res[i] = reader.CallResult{Err: reader.ErrCallReverted}
			continue
		}
		v, ok := f.values[k]
		if !ok {
			res[i] = reader.CallResult{Err: errors.New("no value for " + k)}
			continue
		}
		res[i] = reader.CallResult{Values: v}
	}
	return res
}

func (f *fakeBatch) GetBalance(context.Context, common.Address) (*big.Int, error) {
	if f.balance == nil {
		return nil, errors.New("node down")
	}
	return f.balance, nil
}

func anvilRegistry(t *testing.T) *contracts.Registry {
	r, err := contracts.NewRegistry(networks.NewAnvil(), contracts.KnownDeployment(31337))
	require.NoError(t, err)
	return r
}

func sepoliaRegistry(t *testing.T) *contracts.Registry {
	r, err := contracts.NewRegistry(networks.NewSepolia(), contracts.KnownDeployment(31337))
	require.NoError(t, err)
	return r
}

func fullValues() map[string][]interface{} {
	return map[string][]interface{}{
		"totalSupply":                     {ether(5000)},
		"getLiquidationThreshold":         {big.NewInt(50)},
		"getLiquidationBonus":             {big.NewInt(10)},
		"getCurrentStabilityFeeBps":       {big.NewInt(250)},
		"getProtocolReserve":              {ether(12)},
		"getProtocolBadDebt":              {big.NewInt(0)},
		"getAccountInformation":           {ether(200), ether(1000)},
		"getHealthFactor":                 {new(big.Int).Mul(big.NewInt(25), big.NewInt(1e17))},
		"getCollateralBalanceOfUser.WETH": {ether(1)},
		"getCollateralBalanceOfUser.WBTC": {big.NewInt(0)},
		"balanceOf.WETH":                  {ether(3)},
		"balanceOf.WBTC":                  {ether(2)},
		"balanceOf.SC":                    {ether(150)},
		"getEthBalance":                   {ether(7)},
	}
}

func TestProtocolSnapshot(t *testing.T) {
	reg := anvilRegistry(t)
	ag := NewAggregator(reg, &fakeBatch{registry: reg, values: fullValues()})

	ps := ag.Protocol(context.Background())
	require.True(t, ps.Complete())
	require.Equal(t, ether(5000), ps.TotalSupply)
	require.Equal(t, uint64(50), ps.LiquidationThreshold)
	require.Equal(t, uint64(250), ps.StabilityFeeBps)
	require.False(t, ps.FetchedAt.IsZero())
}

func TestProtocolSnapshotFallsBack(t *testing.T) {
	reg := anvilRegistry(t)
	ag := NewAggregator(reg, &fakeBatch{registry: reg, values: map[string][]interface{}{}})

	ps := ag.Protocol(context.Background())
	require.False(t, ps.Complete())
	require.Equal(t, DefaultLiquidationThreshold, ps.LiquidationThreshold)
	require.Equal(t, DefaultLiquidationBonus, ps.LiquidationBonus)
	require.Equal(t, DefaultStabilityFeeBps, ps.StabilityFeeBps)
	require.Zero(t, ps.TotalSupply.Sign())
	require.False(t, ps.HasField(FieldLiquidationThreshold))
}

func TestAccountSnapshotWithoutMulticall(t *testing.T) {
	reg := anvilRegistry(t)
	fb := &fakeBatch{registry: reg, values: fullValues(), balance: ether(9)}
	ag := NewAggregator(reg, fb)

	as := ag.Account(context.Background(), user)
	require.True(t, as.Complete(), "missing: %v", as.Missing)
	require.Equal(t, ether(200), as.TotalDebt)
	require.Equal(t, ether(1000), as.CollateralValueUSD)
	require.Equal(t, ether(1), as.CollateralOf(contracts.WETH))
	require.Equal(t, ether(150), as.BalanceOf(contracts.SC))
	require.Equal(t, ether(9), as.NativeBalance)
	for _, c := range fb.calls[0] {
		require.NotEqual(t, "getEthBalance", c.Method)
	}
}

func TestAccountSnapshotNativeBalanceThroughMulticall(t *testing.T) {
	reg := sepoliaRegistry(t)
	fb := &fakeBatch{registry: reg, values: fullValues()}
	ag := NewAggregator(reg, fb)

	as := ag.Account(context.Background(), user)
	require.True(t, as.Complete(), "missing: %v", as.Missing)
	require.Equal(t, ether(7), as.NativeBalance)
}

func TestAccountSnapshotFallsBack(t *testing.T) {
	reg := anvilRegistry(t)
	values := fullValues()
	fb := &fakeBatch{
		registry: reg,
		values:   values,
		failing:  map[string]bool{"getHealthFactor": true, "getAccountInformation": true, "balanceOf.SC": true},
	}
	ag := NewAggregator(reg, fb)

	as := ag.Account(context.Background(), user)
	require.ElementsMatch(t,
		[]string{FieldAccountInformation, FieldHealthFactor, walletField(contracts.SC), FieldNativeBalance},
		as.Missing,
	)
	require.Equal(t, InfiniteHealthFactor, as.HealthFactor)
	require.Zero(t, as.TotalDebt.Sign())
	require.Zero(t, as.BalanceOf(contracts.SC).Sign())
	require.Equal(t, ether(3), as.BalanceOf(contracts.WETH))
}

type fakeSource struct {
	protocolCalls atomic.Int32
	accountCalls  atomic.Int32
	// when set, the first account read blocks until it is closed
	holdFirst chan struct{}
	started   chan struct{}
}

func (f *fakeSource) Protocol(context.Context) *ProtocolSnapshot {
	n := f.protocolCalls.Add(1)
	ps := DefaultProtocol()
	ps.TotalSupply = big.NewInt(int64(n))
	return ps
}

func (f *fakeSource) Account(_ context.Context, addr common.Address) *AccountSnapshot {
	n := f.accountCalls.Add(1)
	if n == 1 && f.holdFirst != nil {
		close(f.started)
		<-f.holdFirst
	}
	as := EmptyAccount(addr)
	as.TotalDebt = big.NewInt(int64(n))
	return as
}

func TestPollerFetchWithoutWallet(t *testing.T) {
	src := &fakeSource{}
	p := NewPoller(src, wallet.Disconnected(), 0, 0)

	u := p.Fetch(context.Background())
	require.Nil(t, u.Account)
	require.Equal(t, big.NewInt(1), u.Protocol.TotalSupply)
	require.Equal(t, int32(0), src.accountCalls.Load())
}

func TestPollerLastWriteWins(t *testing.T) {
	src := &fakeSource{holdFirst: make(chan struct{}), started: make(chan struct{})}
	p := NewPoller(src, wallet.NewWatchWallet(user), time.Hour, time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.refreshAccount(context.Background())
	}()
	<-src.started
	p.refreshAccount(context.Background())
	require.Equal(t, big.NewInt(2), p.Latest().Account.TotalDebt)

	close(src.holdFirst)
	wg.Wait()
	// the first read started earlier but finished last
	require.Equal(t, big.NewInt(1), p.Latest().Account.TotalDebt)
}

func TestPollerRunRefreshesAndNotifies(t *testing.T) {
	src := &fakeSource{}
	p := NewPoller(src, wallet.NewWatchWallet(user), time.Hour, time.Hour)

	updates := make(chan Update, 16)
	unsubscribe := p.Subscribe(func(u Update) { updates <- u })
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return src.protocolCalls.Load() == 1 && src.accountCalls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	p.Refresh()
	require.Eventually(t, func() bool {
		return src.protocolCalls.Load() == 2 && src.accountCalls.Load() == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	require.GreaterOrEqual(t, len(updates), 4)
}

func TestPollerAccountPollingDisabledWithoutAddress(t *testing.T) {
	src := &fakeSource{}
	p := NewPoller(src, wallet.Disconnected(), time.Hour, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	p.Run(ctx)
	require.Equal(t, int32(0), src.accountCalls.Load())
	require.Nil(t, p.Latest().Account)
}
