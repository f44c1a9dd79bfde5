package txflow

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/wallet"
)

type Kind string

const (
	Deposit  Kind = "deposit"
	Withdraw Kind = "withdraw"
	Mint     Kind = "mint"
	Burn     Kind = "burn"
)

func Kinds() []Kind {
	return []Kind{Deposit, Withdraw, Mint, Burn}
}

// NeedsApproval reports whether the engine pulls tokens from the user for
// this action.
func (k Kind) NeedsApproval() bool {
	return k == Deposit || k == Burn
}

// Accepts reports whether a is a valid target of the action.
func (k Kind) Accepts(a contracts.Asset) bool {
	switch k {
	case Deposit, Withdraw:
		return a.IsCollateral()
	case Mint, Burn:
		return a == contracts.SC
	}
	return false
}

// Approval is an ERC20 allowance the engine needs before the main call.
type Approval struct {
	Token   contracts.Contract
	Spender common.Address
	Amount  *big.Int
}

// Plan is the calls one execution makes.
type Plan struct {
	Approval *Approval
	Call     wallet.Call
}

func (k Kind) plan(reg *contracts.Registry, asset contracts.Asset, amount *big.Int) (Plan, error) {
	if !k.Accepts(asset) {
		return Plan{}, fmt.Errorf("%w: can't %s %s", ErrUnsupportedAsset, k, asset)
	}
	engine := reg.Engine()
	token := reg.Token(asset)
	var p Plan
	switch k {
	case Deposit:
		p.Call = wallet.NewCall(engine, "depositCollateral", token.Address, amount)
	case Withdraw:
		p.Call = wallet.NewCall(engine, "redeemCollateral", token.Address, amount)
	case Mint:
		p.Call = wallet.NewCall(engine, "mintSc", amount)
	case Burn:
		p.Call = wallet.NewCall(engine, "burnSc", amount)
	}
	if k.NeedsApproval() {
		p.Approval = &Approval{Token: token, Spender: engine.Address, Amount: amount}
	}
	return p, nil
}
