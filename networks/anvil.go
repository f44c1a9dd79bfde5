package networks

var Anvil Network = NewAnvil()

// NewAnvil is a local foundry node. It has no multicall deployment so reads
// fall back to one eth_call per value.
func NewAnvil() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "anvil",
		AlternativeNames:   []string{"local", "localhost"},
		ChainID:            31337,
		NativeTokenSymbol:  "ETH",
		NativeTokenDecimal: 18,
		BlockTime:          1,
		NodeVariableName:   "ANVIL_NODE",
		DefaultNodes: map[string]string{
			"local": "http://127.0.0.1:8545",
		},
		Testnet: true,
	})
}
