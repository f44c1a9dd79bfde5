package networks

import (
	"github.com/ethereum/go-ethereum/common"
)

var Sepolia Network = NewSepolia()

func NewSepolia() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "sepolia",
		AlternativeNames:   []string{"sepolia-testnet"},
		ChainID:            11155111,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          12,
		NodeVariableName:   "SEPOLIA_NODE",
		DefaultNodes: map[string]string{
			"publicnode": "https://ethereum-sepolia-rpc.publicnode.com",
			"drpc":       "https://sepolia.drpc.org",
		},
		MultiCallContractAddress: common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11"),
		Testnet:                  true,
	})
}
