package common

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Pow10 returns 10^decimal as a big int.
func Pow10(decimal uint64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(decimal), nil)
}

// FloatStringToBig converts a human readable decimal string to its integer
// representation with specific decimal, without going through floats.
// Example:
// - FloatStringToBig("1", 4) = 10000
// - FloatStringToBig("1.234", 4) = 12340
// - FloatStringToBig("1.23456", 4) fails, the value has more precision than
// the token supports
func FloatStringToBig(value string, decimal uint64) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty value")
	}
	if !decimalRe.MatchString(value) {
		return nil, fmt.Errorf("`%s` is not a number", value)
	}
	r, ok := new(big.Rat).SetString(value)
	if !ok {
		return nil, fmt.Errorf("`%s` is not a number", value)
	}
	r.Mul(r, new(big.Rat).SetInt(Pow10(decimal)))
	if !r.IsInt() {
		return nil, fmt.Errorf("`%s` has more than %d decimals", value, decimal)
	}
	return new(big.Int).Set(r.Num()), nil
}

// BigToFixed renders value with exactly places fractional digits, truncating
// anything beyond them.
// Example:
// - BigToFixed(1234567, 6, 4) = "1.2345"
// - BigToFixed(1000000, 6, 2) = "1.00"
func BigToFixed(value *big.Int, decimal uint64, places int) string {
	if value == nil {
		value = big.NewInt(0)
	}
	neg := value.Sign() < 0
	abs := new(big.Int).Abs(value)
	if uint64(places) < decimal {
		abs.Quo(abs, Pow10(decimal-uint64(places)))
	} else {
		abs.Mul(abs, Pow10(uint64(places)-decimal))
	}
	q, r := new(big.Int).QuoRem(abs, Pow10(uint64(places)), new(big.Int))
	res := q.String()
	if places > 0 {
		res = res + "." + fmt.Sprintf("%0*s", places, r.String())
	}
	if neg && abs.Sign() != 0 {
		return "-" + res
	}
	return res
}

// BigToFloat converts a big int to float according to its number of decimal digits
// Example:
// - BigToFloat(1100, 3) = 1.1
// - BigToFloat(1100, 2) = 11
// - BigToFloat(1100, 5) = 0.011
func BigToFloat(b *big.Int, decimal uint64) float64 {
	if b == nil {
		return 0
	}
	f := new(big.Float).SetInt(b)
	power := new(big.Float).SetInt(Pow10(decimal))
	res := new(big.Float).Quo(f, power)
	result, _ := res.Float64()
	return result
}
