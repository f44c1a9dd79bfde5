package common

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var ZeroAddress = common.Address{}

// MustParseABI parses a JSON ABI definition and panics when it is malformed.
// Only meant for ABIs embedded in the binary.
func MustParseABI(definition string) *abi.ABI {
	result, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded abi: %s", err))
	}
	return &result
}

// IsHexAddress reports whether str is a 0x prefixed 20 bytes hex address.
func IsHexAddress(str string) bool {
	return strings.HasPrefix(str, "0x") && common.IsHexAddress(str)
}
