package dashboard

import (
	"fmt"

	sccommon "github.com/scprotocol/scctl/common"
	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/networks"
	"github.com/scprotocol/scctl/position"
	"github.com/scprotocol/scctl/snapshot"
	"github.com/scprotocol/scctl/txflow"
	"github.com/scprotocol/scctl/ui"
)

const displayPlaces = 4

func bandSeverity(b position.Band) ui.Severity {
	switch b {
	case position.BandSafe:
		return ui.SeveritySuccess
	case position.BandCaution:
		return ui.SeverityWarn
	}
	return ui.SeverityError
}

// HealthFactorText is the health factor coloured by its band.
func HealthFactorText(u ui.UI, hf position.HealthFactor) string {
	return u.Style(ui.Styled(hf.String(), bandSeverity(hf.Band())))
}

func NetworkBadge(u ui.UI, n networks.Network) {
	sev := ui.SeveritySuccess
	if n.IsTestnet() {
		sev = ui.SeverityCritical
	}
	u.Info("● %s", u.Style(ui.Styled(fmt.Sprintf("%s (%d)", n.GetName(), n.GetChainID()), sev)))
}

func ProtocolStats(u ui.UI, ps *snapshot.ProtocolSnapshot) {
	u.Section("Protocol")
	u.KeyValue([][2]string{
		{"Total SC supply", position.FormatAmount(ps.TotalSupply, 2) + " SC"},
		{"Liquidation threshold", fmt.Sprintf("%d%%", ps.LiquidationThreshold)},
		{"Liquidation bonus", fmt.Sprintf("%d%%", ps.LiquidationBonus)},
		{"Stability fee", position.StabilityFeePercent(ps.StabilityFeeBps) + "% APR"},
		{"Protocol reserve", position.FormatAmount(ps.ProtocolReserve, 2) + " SC"},
		{"Bad debt", position.FormatAmount(ps.ProtocolBadDebt, 2) + " SC"},
	})
	if !ps.Complete() {
		u.Warn("Some protocol values couldn't be read, showing defaults for: %v", ps.Missing)
	}
}

// Position renders the account summary. A nil account means no wallet is
// connected.
func Position(u ui.UI, ps *snapshot.ProtocolSnapshot, as *snapshot.AccountSnapshot) {
	u.Section("Position")
	if as == nil {
		u.Warn("No wallet connected. Set PRIVATE_KEY, --key-file or --address to see a position.")
		return
	}
	hf := position.NewHealthFactor(as.HealthFactor)
	caption := "Safety Score"
	if hf.Critical() {
		caption = "Risk of Liquidation"
	}
	u.KeyValue([][2]string{
		{"Account", as.Address.Hex()},
		{"Your debt", position.FormatAmount(as.TotalDebt, displayPlaces) + " SC minted"},
		{"Collateral value", "$" + position.FormatAmount(as.CollateralValueUSD, 2)},
		{"Health factor", HealthFactorText(u, hf) + " (" + caption + ")"},
		{"Max mintable", position.FormatAmount(MaxMintable(ps, as), displayPlaces) + " SC"},
	})
	rows := [][]string{}
	for _, a := range contracts.CollateralAssets() {
		rows = append(rows, []string{string(a), position.FormatAmount(as.CollateralOf(a), displayPlaces)})
	}
	u.Table([]string{"Collateral", "Deposited"}, rows)
	if !as.Complete() {
		u.Warn("Some account values couldn't be read: %v", as.Missing)
	}
}

func WalletBalances(u ui.UI, n networks.Network, as *snapshot.AccountSnapshot) {
	if as == nil {
		return
	}
	u.Section("Wallet")
	rows := [][]string{
		{n.GetNativeTokenSymbol(), position.FormatAmount(as.NativeBalance, displayPlaces)},
	}
	for _, a := range contracts.AllAssets() {
		rows = append(rows, []string{string(a), position.FormatAmount(as.BalanceOf(a), displayPlaces)})
	}
	u.Table([]string{"Asset", "Balance"}, rows)
}

func renderOutcome(u ui.UI, state txflow.State, success string) {
	if msg, ok := state.Message(); ok {
		u.Error("%s", msg)
	}
	if state.Step() == txflow.StepSuccess {
		u.Success("%s", success)
	}
	if state.Step().Pending() {
		u.Info("%s", stepIndicator(state.Step()))
	}
}

func buttonLine(u ui.UI, in ActionInput) {
	label := ButtonLabel(in.Kind, in.Asset, in.State.Step())
	if ButtonDisabled(in) {
		u.Info("[ %s ] (disabled)", label)
		return
	}
	u.Critical("[ %s ]", label)
}

// CollateralManager renders the deposit/withdraw panel for in.
func CollateralManager(u ui.UI, in ActionInput, as *snapshot.AccountSnapshot) {
	u.Section("Collateral Manager")
	label, balance := "Wallet", "0"
	if as != nil {
		if in.Kind == txflow.Deposit {
			balance = position.FormatAmount(as.BalanceOf(in.Asset), displayPlaces)
		} else {
			label = "Deposited"
			balance = position.FormatAmount(as.CollateralOf(in.Asset), displayPlaces)
		}
	} else if in.Kind == txflow.Withdraw {
		label = "Deposited"
	}
	u.KeyValue([][2]string{
		{"Action", string(in.Kind)},
		{"Asset", string(in.Asset)},
		{label, balance + " " + string(in.Asset)},
		{"Amount", in.Amount},
	})
	buttonLine(u, in)
	renderOutcome(u, in.State, "Transaction completed successfully!")
}

// DebtManager renders the mint/burn panel for in.
func DebtManager(u ui.UI, in ActionInput, ps *snapshot.ProtocolSnapshot, as *snapshot.AccountSnapshot) {
	u.Section("Debt Manager")
	u.Info("%s", u.Style(ui.Styled("1 SC = $1.00", ui.SeveritySuccess)))

	acc := as
	if acc == nil {
		acc = snapshot.EmptyAccount(sccommon.ZeroAddress)
	}
	feeBps := snapshot.DefaultStabilityFeeBps
	if ps != nil {
		feeBps = ps.StabilityFeeBps
	}
	hf := position.NewHealthFactor(acc.HealthFactor)
	balanceLabel, available := "Max Mintable", MaxMintable(ps, as)
	if in.Kind == txflow.Burn {
		balanceLabel, available = "SC Balance", acc.BalanceOf(contracts.SC)
	}
	rows := [][2]string{
		{"Your debt", position.FormatAmount(acc.TotalDebt, displayPlaces) + " SC"},
		{"Health factor", HealthFactorText(u, hf)},
		{"Stability fee", position.StabilityFeePercent(feeBps) + "% APR"},
		{balanceLabel, position.FormatAmount(available, displayPlaces) + " (max " + MaxAmount(in.Kind, in.Asset, ps, as) + ")"},
		{"Amount", in.Amount},
	}
	if after, ok := ProjectedDebt(in.Kind, as, in.Amount); ok {
		rows = append(rows, [2]string{"Debt after", after + " SC"})
	}
	u.KeyValue(rows)

	if in.Kind == txflow.Mint && hf.Low() {
		u.Warn("Your health factor is low. Minting more SC increases liquidation risk.")
	}
	buttonLine(u, in)
	renderOutcome(u, in.State, "Transaction completed successfully.")
	if in.Kind == txflow.Mint {
		u.Info("Minting increases debt. Keep Health Factor > 1.5 for safety.")
	} else {
		u.Info("Burning reduces debt and improves Health Factor.")
	}
}

// Manager renders the panel that owns in.Kind.
func Manager(u ui.UI, in ActionInput, ps *snapshot.ProtocolSnapshot, as *snapshot.AccountSnapshot) {
	switch in.Kind {
	case txflow.Deposit, txflow.Withdraw:
		CollateralManager(u, in, as)
	default:
		DebtManager(u, in, ps, as)
	}
}

// Contracts lists the deployed contracts of the registry's network.
func Contracts(u ui.UI, reg *contracts.Registry) {
	u.Section("Deployed Contracts")
	NetworkBadge(u, reg.Network())
	rows := [][]string{}
	for _, c := range reg.All() {
		rows = append(rows, []string{c.Label, c.Address.Hex()})
	}
	if mc, ok := reg.Multicall(); ok {
		rows = append(rows, []string{mc.Label, mc.Address.Hex()})
	}
	u.Table([]string{"Contract", "Address"}, rows)
}

// ContractsCompact is Contracts with shortened addresses, for the
// dashboard footer.
func ContractsCompact(u ui.UI, reg *contracts.Registry) {
	rows := [][2]string{}
	for _, c := range reg.All() {
		rows = append(rows, [2]string{c.Label, sccommon.ShortAddress(c.Address.Hex())})
	}
	u.KeyValue(rows)
}
