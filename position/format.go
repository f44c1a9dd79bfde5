package position

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	sccommon "github.com/scprotocol/scctl/common"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders an 18 decimals value with places decimals and
// thousands separators, truncating the rest.
// Example: FormatAmount(1234567.891e18, 2) = "1,234,567.89"
func FormatAmount(value *big.Int, places int) string {
	fixed := sccommon.BigToFixed(value, Decimals, places)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	grouped := intPart
	if i, ok := new(big.Int).SetString(intPart, 10); ok && i.IsInt64() {
		grouped = printer.Sprintf("%d", i.Int64())
	}
	res := grouped
	if frac != "" {
		res = res + "." + frac
	}
	if neg {
		return "-" + res
	}
	return res
}

// FormatInput renders value the way it should be typed back as an amount,
// no separators. Used by the max helpers.
func FormatInput(value *big.Int, places int) string {
	return sccommon.BigToFixed(value, Decimals, places)
}

// StabilityFeePercent renders basis points as a percentage, 200 -> "2.00".
func StabilityFeePercent(bps uint64) string {
	return fmt.Sprintf("%d.%02d", bps/100, bps%100)
}
