package position

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"

	sccommon "github.com/scprotocol/scctl/common"
)

type Band int

const (
	BandSafe Band = iota
	BandCaution
	BandCritical
)

func (b Band) String() string {
	switch b {
	case BandSafe:
		return "safe"
	case BandCaution:
		return "caution"
	case BandCritical:
		return "critical"
	}
	return "unknown"
}

var (
	safeAbove    = uint256.NewInt(15e17) // 1.5
	cautionFloor = uint256.NewInt(12e17) // 1.2
)

// HealthFactor is the engine's 18 decimals health factor. The all ones
// value means the account has no debt; it is never compared as a number.
type HealthFactor struct {
	raw *uint256.Int
}

// NewHealthFactor wraps raw. A nil raw (not read yet) is infinite.
func NewHealthFactor(raw *big.Int) HealthFactor {
	if raw == nil {
		return HealthFactor{raw: new(uint256.Int).Set(maxUint256)}
	}
	return HealthFactor{raw: toU256(raw)}
}

func (h HealthFactor) IsInfinite() bool {
	return h.raw == nil || h.raw.Eq(maxUint256)
}

func (h HealthFactor) Band() Band {
	if h.IsInfinite() || h.raw.Gt(safeAbove) {
		return BandSafe
	}
	if !h.raw.Lt(cautionFloor) {
		return BandCaution
	}
	return BandCritical
}

// Low is true for a finite health factor below 1.5.
func (h HealthFactor) Low() bool {
	return !h.IsInfinite() && h.raw.Lt(safeAbove)
}

// Critical is true for a finite health factor below 1.2.
func (h HealthFactor) Critical() bool {
	return !h.IsInfinite() && h.raw.Lt(cautionFloor)
}

// String renders "∞" or the value with 4 decimals.
func (h HealthFactor) String() string {
	if h.IsInfinite() {
		return "∞"
	}
	return sccommon.BigToFixed(h.raw.ToBig(), Decimals, 4)
}

// Float64 is the approximate value, +Inf when infinite.
func (h HealthFactor) Float64() float64 {
	if h.IsInfinite() {
		return math.Inf(1)
	}
	return sccommon.BigToFloat(h.raw.ToBig(), Decimals)
}
