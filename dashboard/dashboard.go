// Package dashboard renders snapshots and transaction state through a
// ui.UI. Nothing here reads the chain or modifies a snapshot.
package dashboard

import (
	"fmt"
	"time"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/position"
	"github.com/scprotocol/scctl/snapshot"
	"github.com/scprotocol/scctl/ui"
)

func HowItWorks(u ui.UI, ps *snapshot.ProtocolSnapshot) {
	u.Section("How it works")
	u.Info("1. Deposit WETH or WBTC as collateral")
	u.Info("2. Mint SC up to %d%% of your collateral value", ps.LiquidationThreshold)
	u.Info("3. Repay debt to reclaim your collateral")
}

func Mechanics(u ui.UI, ps *snapshot.ProtocolSnapshot) {
	u.Section("Protocol Mechanics")
	u.KeyValue([][2]string{
		{"Stability Fees", fmt.Sprintf(
			"%s%% APR, dynamically adjusts based on SC peg. Increases when SC trades below $0.99, decreases above $1.01.",
			position.StabilityFeePercent(ps.StabilityFeeBps),
		)},
		{"Liquidations", fmt.Sprintf(
			"Positions below health factor 1.0 are eligible for liquidation via English auction. Liquidators receive %d%% bonus collateral.",
			ps.LiquidationBonus,
		)},
		{"Price Stability Module", "PSM enables 1:1 swaps between collateral tokens and SC to maintain the $1.00 peg through arbitrage."},
		{"Oracle Safety", "Hardened Chainlink oracles with 3-hour stale timeout, 30% circuit breaker, and 30-minute TWAP smoothing."},
	})
}

// Options picks the optional parts of Render.
type Options struct {
	Verbose bool
	Now     func() time.Time
}

// Render draws the whole dashboard for one snapshot update.
func Render(u ui.UI, reg *contracts.Registry, update snapshot.Update, opts Options) {
	ps := update.Protocol
	if ps == nil {
		ps = snapshot.DefaultProtocol()
	}
	NetworkBadge(u, reg.Network())
	ProtocolStats(u, ps)
	Position(u, ps, update.Account)
	WalletBalances(u, reg.Network(), update.Account)
	if opts.Verbose {
		HowItWorks(u, ps)
		Mechanics(u, ps)
		Contracts(u, reg)
	} else {
		u.Section("Contracts")
		ContractsCompact(u, reg)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	if !ps.FetchedAt.IsZero() {
		u.Info("Updated %s ago", now().Sub(ps.FetchedAt).Round(time.Second))
	}
}
