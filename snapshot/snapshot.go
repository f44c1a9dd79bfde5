package snapshot

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/scprotocol/scctl/contracts"
)

// Values used when a protocol read fails.
const (
	DefaultLiquidationThreshold uint64 = 50
	DefaultLiquidationBonus     uint64 = 10
	DefaultStabilityFeeBps      uint64 = 200
)

// InfiniteHealthFactor is what the engine returns for an account without
// debt.
var InfiniteHealthFactor = new(uint256.Int).SetAllOne().ToBig()

// ProtocolSnapshot is the protocol wide state at FetchedAt. It is never
// modified once built, a refresh builds a new one.
type ProtocolSnapshot struct {
	TotalSupply          *big.Int
	LiquidationThreshold uint64 // percent
	LiquidationBonus     uint64 // percent
	StabilityFeeBps      uint64
	ProtocolReserve      *big.Int
	ProtocolBadDebt      *big.Int
	FetchedAt            time.Time
	// Missing lists the fields that couldn't be read and hold fallbacks.
	Missing []string
}

func (ps *ProtocolSnapshot) Complete() bool {
	return len(ps.Missing) == 0
}

// HasField reports whether field was actually read from chain.
func (ps *ProtocolSnapshot) HasField(field string) bool {
	return !contains(ps.Missing, field)
}

// AccountSnapshot is the state of one address at FetchedAt. Same life
// cycle as ProtocolSnapshot.
type AccountSnapshot struct {
	Address            common.Address
	TotalDebt          *big.Int
	CollateralValueUSD *big.Int
	HealthFactor       *big.Int
	Collateral         map[contracts.Asset]*big.Int
	WalletBalances     map[contracts.Asset]*big.Int
	NativeBalance      *big.Int
	FetchedAt          time.Time
	Missing            []string
}

func (as *AccountSnapshot) Complete() bool {
	return len(as.Missing) == 0
}

func (as *AccountSnapshot) HasField(field string) bool {
	return !contains(as.Missing, field)
}

// CollateralOf returns the deposited amount of a, zero when unknown.
func (as *AccountSnapshot) CollateralOf(a contracts.Asset) *big.Int {
	return valueOrZero(as.Collateral[a])
}

// BalanceOf returns the wallet balance of a, zero when unknown.
func (as *AccountSnapshot) BalanceOf(a contracts.Asset) *big.Int {
	return valueOrZero(as.WalletBalances[a])
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// EmptyAccount is what is shown before the first successful account read.
func EmptyAccount(addr common.Address) *AccountSnapshot {
	return &AccountSnapshot{
		Address:            addr,
		TotalDebt:          big.NewInt(0),
		CollateralValueUSD: big.NewInt(0),
		HealthFactor:       new(big.Int).Set(InfiniteHealthFactor),
		Collateral:         map[contracts.Asset]*big.Int{},
		WalletBalances:     map[contracts.Asset]*big.Int{},
		NativeBalance:      big.NewInt(0),
	}
}

// DefaultProtocol is what is shown before the first protocol read.
func DefaultProtocol() *ProtocolSnapshot {
	return &ProtocolSnapshot{
		TotalSupply:          big.NewInt(0),
		LiquidationThreshold: DefaultLiquidationThreshold,
		LiquidationBonus:     DefaultLiquidationBonus,
		StabilityFeeBps:      DefaultStabilityFeeBps,
		ProtocolReserve:      big.NewInt(0),
		ProtocolBadDebt:      big.NewInt(0),
	}
}
