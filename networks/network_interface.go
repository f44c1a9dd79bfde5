package networks

import (
	"time"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration

	// GetNodeVariableName is the env var users set to point scctl to their
	// own node for this network.
	GetNodeVariableName() string
	GetDefaultNodes() map[string]string
	MultiCallContract() string
	IsTestnet() bool

	MarshalJSON() ([]byte, error)
}
