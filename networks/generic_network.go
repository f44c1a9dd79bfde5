package networks

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type GenericNetworkConfig struct {
	Name                     string            `json:"name"`
	AlternativeNames         []string          `json:"alternative_names"`
	ChainID                  uint64            `json:"chain_id"`
	NativeTokenSymbol        string            `json:"native_token_symbol"`
	NativeTokenDecimal       uint64            `json:"native_token_decimal"`
	BlockTime                uint64            `json:"block_time"`
	NodeVariableName         string            `json:"node_variable_name"`
	DefaultNodes             map[string]string `json:"default_nodes"`
	MultiCallContractAddress common.Address    `json:"multi_call_contract_address"`
	Testnet                  bool              `json:"testnet"`
}

// GenericNetwork is a Network entirely described by its config so it can be
// declared in code or loaded from a json file.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	if gn.config.BlockTime == 0 {
		return time.Second
	}
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

// MultiCallContract returns an empty string when the network has no
// multicall deployment.
func (gn *GenericNetwork) MultiCallContract() string {
	if gn.config.MultiCallContractAddress == (common.Address{}) {
		return ""
	}
	return gn.config.MultiCallContractAddress.Hex()
}

func (gn *GenericNetwork) IsTestnet() bool {
	return gn.config.Testnet
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(gn.config, "", "  ")
}
