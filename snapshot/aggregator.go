package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/util/reader"
)

// Field names used in Missing.
const (
	FieldTotalSupply          = "totalSupply"
	FieldLiquidationThreshold = "liquidationThreshold"
	FieldLiquidationBonus     = "liquidationBonus"
	FieldStabilityFee         = "stabilityFee"
	FieldProtocolReserve      = "protocolReserve"
	FieldProtocolBadDebt      = "protocolBadDebt"

	FieldAccountInformation = "accountInformation"
	FieldHealthFactor       = "healthFactor"
	FieldNativeBalance      = "nativeBalance"
)

func collateralField(a contracts.Asset) string {
	return "collateral." + string(a)
}

func walletField(a contracts.Asset) string {
	return "wallet." + string(a)
}

// BatchReader is the read boundary the aggregator needs.
type BatchReader interface {
	ReadMany(ctx context.Context, calls []reader.Call) []reader.CallResult
	GetBalance(ctx context.Context, account common.Address) (*big.Int, error)
}

// Aggregator turns batched contract reads into snapshots. Read failures
// never fail a snapshot, they fall back to safe values and are listed in
// Missing.
type Aggregator struct {
	registry *contracts.Registry
	reader   BatchReader
	now      func() time.Time
}

func NewAggregator(registry *contracts.Registry, r BatchReader) *Aggregator {
	return &Aggregator{
		registry: registry,
		reader:   r,
		now:      time.Now,
	}
}

func (ag *Aggregator) logFailure(field string, err error) {
	slog.Debug("snapshot read failed", "field", field, "error", err)
}

func (ag *Aggregator) bigOr(r reader.CallResult, field string, missing *[]string) *big.Int {
	v, err := reader.BigResult(r)
	if err != nil {
		ag.logFailure(field, err)
		*missing = append(*missing, field)
		return big.NewInt(0)
	}
	return v
}

func (ag *Aggregator) uintOr(r reader.CallResult, field string, fallback uint64, missing *[]string) uint64 {
	v, err := reader.BigResult(r)
	if err == nil && !v.IsUint64() {
		err = fmt.Errorf("%s out of range: %s", field, v)
	}
	if err != nil {
		ag.logFailure(field, err)
		*missing = append(*missing, field)
		return fallback
	}
	return v.Uint64()
}

// Protocol reads the protocol wide values in one batch.
func (ag *Aggregator) Protocol(ctx context.Context) *ProtocolSnapshot {
	engine := ag.registry.Engine()
	calls := []reader.Call{
		reader.NewCall(ag.registry.Get(contracts.StableCoin), "totalSupply"),
		reader.NewCall(engine, "getLiquidationThreshold"),
		reader.NewCall(engine, "getLiquidationBonus"),
		reader.NewCall(engine, "getCurrentStabilityFeeBps"),
		reader.NewCall(engine, "getProtocolReserve"),
		reader.NewCall(engine, "getProtocolBadDebt"),
	}
	results := ag.reader.ReadMany(ctx, calls)

	missing := []string{}
	ps := &ProtocolSnapshot{
		TotalSupply:          ag.bigOr(results[0], FieldTotalSupply, &missing),
		LiquidationThreshold: ag.uintOr(results[1], FieldLiquidationThreshold, DefaultLiquidationThreshold, &missing),
		LiquidationBonus:     ag.uintOr(results[2], FieldLiquidationBonus, DefaultLiquidationBonus, &missing),
		StabilityFeeBps:      ag.uintOr(results[3], FieldStabilityFee, DefaultStabilityFeeBps, &missing),
		ProtocolReserve:      ag.bigOr(results[4], FieldProtocolReserve, &missing),
		ProtocolBadDebt:      ag.bigOr(results[5], FieldProtocolBadDebt, &missing),
		FetchedAt:            ag.now(),
	}
	ps.Missing = missing
	return ps
}

// Account reads everything about addr in one batch. The native balance
// rides along in the batch when the network has a multicall contract.
func (ag *Aggregator) Account(ctx context.Context, addr common.Address) *AccountSnapshot {
	engine := ag.registry.Engine()
	collaterals := contracts.CollateralAssets()
	assets := contracts.AllAssets()

	calls := []reader.Call{
		reader.NewCall(engine, "getAccountInformation", addr),
		reader.NewCall(engine, "getHealthFactor", addr),
	}
	for _, a := range collaterals {
		calls = append(calls, reader.NewCall(engine, "getCollateralBalanceOfUser", addr, ag.registry.Token(a).Address))
	}
	for _, a := range assets {
		calls = append(calls, reader.NewCall(ag.registry.Token(a), "balanceOf", addr))
	}
	mc, hasMulticall := ag.registry.Multicall()
	if hasMulticall {
		calls = append(calls, reader.NewCall(mc, "getEthBalance", addr))
	}
	results := ag.reader.ReadMany(ctx, calls)

	missing := []string{}
	as := EmptyAccount(addr)

	if info := results[0]; info.OK() && len(info.Values) == 2 {
		debt, okDebt := info.Values[0].(*big.Int)
		value, okValue := info.Values[1].(*big.Int)
		if okDebt && okValue {
			as.TotalDebt = debt
			as.CollateralValueUSD = value
		} else {
			missing = append(missing, FieldAccountInformation)
		}
	} else {
		ag.logFailure(FieldAccountInformation, info.Err)
		missing = append(missing, FieldAccountInformation)
	}

	if hf, err := reader.BigResult(results[1]); err == nil {
		as.HealthFactor = hf
	} else {
		ag.logFailure(FieldHealthFactor, err)
		missing = append(missing, FieldHealthFactor)
	}

	i := 2
	for _, a := range collaterals {
		as.Collateral[a] = ag.bigOr(results[i], collateralField(a), &missing)
		i++
	}
	for _, a := range assets {
		as.WalletBalances[a] = ag.bigOr(results[i], walletField(a), &missing)
		i++
	}

	if hasMulticall {
		as.NativeBalance = ag.bigOr(results[i], FieldNativeBalance, &missing)
	} else {
		bal, err := ag.reader.GetBalance(ctx, addr)
		if err != nil {
			ag.logFailure(FieldNativeBalance, err)
			missing = append(missing, FieldNativeBalance)
		} else {
			as.NativeBalance = bal
		}
	}

	as.FetchedAt = ag.now()
	as.Missing = missing
	return as
}
