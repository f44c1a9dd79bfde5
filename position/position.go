// Package position derives the numbers shown next to an account: how much
// more it can mint or burn, its debt after an action and how risky its
// health factor is. Every function works on copies, inputs are never
// modified.
package position

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	sccommon "github.com/scprotocol/scctl/common"
)

// Decimals of SC and of every USD value the engine returns.
const Decimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

var (
	hundred    = uint256.NewInt(100)
	maxUint256 = new(uint256.Int).SetAllOne()
)

// toU256 clamps b into uint256 range, nil and negatives become zero.
func toU256(b *big.Int) *uint256.Int {
	if b == nil || b.Sign() <= 0 {
		return new(uint256.Int)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return new(uint256.Int).Set(maxUint256)
	}
	return v
}

// MaxMintable is how much SC can still be minted against the collateral:
// max(0, collateralValueUSD * thresholdPct / 100 - totalDebt).
func MaxMintable(collateralValueUSD, totalDebt *big.Int, thresholdPct uint64) *big.Int {
	maxDebt, overflow := new(uint256.Int).MulDivOverflow(
		toU256(collateralValueUSD), uint256.NewInt(thresholdPct), hundred,
	)
	if overflow {
		maxDebt = new(uint256.Int).Set(maxUint256)
	}
	debt := toU256(totalDebt)
	if !maxDebt.Gt(debt) {
		return big.NewInt(0)
	}
	return new(uint256.Int).Sub(maxDebt, debt).ToBig()
}

// MaxBurn is min(walletSC, totalDebt).
func MaxBurn(walletSC, totalDebt *big.Int) *big.Int {
	w, d := toU256(walletSC), toU256(totalDebt)
	if w.Lt(d) {
		return w.ToBig()
	}
	return d.ToBig()
}

func ProjectedDebtAfterMint(debt, amount *big.Int) *big.Int {
	res, overflow := new(uint256.Int).AddOverflow(toU256(debt), toU256(amount))
	if overflow {
		return maxUint256.ToBig()
	}
	return res.ToBig()
}

func ProjectedDebtAfterBurn(debt, amount *big.Int) *big.Int {
	d, a := toU256(debt), toU256(amount)
	if !d.Gt(a) {
		return big.NewInt(0)
	}
	return new(uint256.Int).Sub(d, a).ToBig()
}

// ParseAmount converts a positive human readable amount into base units.
// Errors wrap ErrInvalidAmount.
func ParseAmount(value string, decimals uint64) (*big.Int, error) {
	amount, err := sccommon.FloatStringToBig(value, decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, err)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidAmount)
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return nil, fmt.Errorf("%w: `%s` is too large", ErrInvalidAmount, value)
	}
	return amount, nil
}

// ValidAmount reports whether value would be accepted by ParseAmount.
func ValidAmount(value string, decimals uint64) bool {
	_, err := ParseAmount(value, decimals)
	return err == nil
}
