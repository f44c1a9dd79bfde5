package dashboard

import (
	"fmt"
	"math/big"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/position"
	"github.com/scprotocol/scctl/snapshot"
	"github.com/scprotocol/scctl/txflow"
)

// MaxHelperPlaces is how many decimals the max helpers fill in.
const MaxHelperPlaces = 6

// ActionInput is what the user has picked in one of the managers.
type ActionInput struct {
	Kind   txflow.Kind
	Asset  contracts.Asset
	Amount string
	State  txflow.State
}

// ButtonLabel is the text of the action button for the current step.
func ButtonLabel(kind txflow.Kind, asset contracts.Asset, step txflow.Step) string {
	switch kind {
	case txflow.Deposit, txflow.Withdraw:
		switch step {
		case txflow.StepApproving:
			return "Approving Token..."
		case txflow.StepExecuting:
			if kind == txflow.Deposit {
				return "Depositing..."
			}
			return "Withdrawing..."
		case txflow.StepSuccess:
			return "Transaction Successful"
		}
		if kind == txflow.Deposit {
			return "Deposit " + string(asset)
		}
		return "Withdraw " + string(asset)
	default:
		switch step {
		case txflow.StepApproving:
			return "Approving..."
		case txflow.StepExecuting:
			return "Executing..."
		}
		if kind == txflow.Mint {
			return "Mint StableCoin"
		}
		return "Burn StableCoin"
	}
}

// ButtonDisabled is true while a tx is pending or the amount isn't a
// positive number.
func ButtonDisabled(in ActionInput) bool {
	return in.State.Step().Pending() || !position.ValidAmount(in.Amount, in.Asset.Decimals())
}

// MaxMintable is zero until both the account and the threshold were read.
func MaxMintable(ps *snapshot.ProtocolSnapshot, as *snapshot.AccountSnapshot) *big.Int {
	if ps == nil || as == nil ||
		!ps.HasField(snapshot.FieldLiquidationThreshold) ||
		!as.HasField(snapshot.FieldAccountInformation) {
		return big.NewInt(0)
	}
	return position.MaxMintable(as.CollateralValueUSD, as.TotalDebt, ps.LiquidationThreshold)
}

// MaxAmount is what the max helper fills in for kind.
func MaxAmount(kind txflow.Kind, asset contracts.Asset, ps *snapshot.ProtocolSnapshot, as *snapshot.AccountSnapshot) string {
	if as == nil {
		return position.FormatInput(big.NewInt(0), MaxHelperPlaces)
	}
	var v *big.Int
	switch kind {
	case txflow.Deposit:
		v = as.BalanceOf(asset)
	case txflow.Withdraw:
		v = as.CollateralOf(asset)
	case txflow.Mint:
		v = MaxMintable(ps, as)
	case txflow.Burn:
		v = position.MaxBurn(as.BalanceOf(contracts.SC), as.TotalDebt)
	}
	return position.FormatInput(v, MaxHelperPlaces)
}

// ProjectedDebt is the debt after a mint or burn of amount, ok is false
// when amount isn't valid.
func ProjectedDebt(kind txflow.Kind, as *snapshot.AccountSnapshot, amount string) (string, bool) {
	value, err := position.ParseAmount(amount, position.Decimals)
	if err != nil || as == nil {
		return "", false
	}
	var after *big.Int
	switch kind {
	case txflow.Mint:
		after = position.ProjectedDebtAfterMint(as.TotalDebt, value)
	case txflow.Burn:
		after = position.ProjectedDebtAfterBurn(as.TotalDebt, value)
	default:
		return "", false
	}
	return position.FormatAmount(after, 4), true
}

func stepIndicator(step txflow.Step) string {
	approve, execute := "1. Approve", "2. Execute"
	switch step {
	case txflow.StepApproving:
		approve = "[" + approve + "]"
	case txflow.StepExecuting:
		execute = "[" + execute + "]"
	}
	return fmt.Sprintf("%s → %s", approve, execute)
}
