package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	sccommon "github.com/scprotocol/scctl/common"
)

// Deployment maps logical contract names to their address on one network.
type Deployment map[Name]common.Address

var overrideVariables = map[Name]string{
	StableCoin:       "SC_STABLE_COIN_ADDRESS",
	StableCoinEngine: "SC_ENGINE_ADDRESS",
	WETHToken:        "SC_WETH_ADDRESS",
	WBTCToken:        "SC_WBTC_ADDRESS",
}

// knownDeployments are keyed by chain id. Anvil addresses are the ones the
// deploy script gets from the default anvil account at nonces 0 to 3.
var knownDeployments = map[uint64]Deployment{
	31337: {
		WETHToken:        common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		WBTCToken:        common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
		StableCoin:       common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"),
		StableCoinEngine: common.HexToAddress("0xCf7Ed3AccA5a467e9e704C703E8D87F634fB0Fc9"),
	},
}

// KnownDeployment returns a copy of the built-in deployment of a chain.
func KnownDeployment(chainID uint64) Deployment {
	res := Deployment{}
	for name, addr := range knownDeployments[chainID] {
		res[name] = addr
	}
	return res
}

// LoadDeploymentFile reads a json object of logical name to address, e.g.
//
//	{"StableCoin": "0x...", "StableCoinEngine": "0x...", "WETH": "0x...", "WBTC": "0x..."}
func LoadDeploymentFile(path string) (Deployment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read deployments file: %w", err)
	}
	raw := map[string]string{}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("couldn't parse deployments file %s: %w", path, err)
	}
	res := Deployment{}
	for key, value := range raw {
		name := Name(key)
		if _, known := overrideVariables[name]; !known {
			return nil, fmt.Errorf("unknown contract '%s' in %s", key, path)
		}
		if !sccommon.IsHexAddress(value) {
			return nil, fmt.Errorf("'%s' of %s is not an address", value, key)
		}
		res[name] = common.HexToAddress(value)
	}
	return res, nil
}

// Merge returns base with every non zero address of overrides applied.
func (d Deployment) Merge(overrides Deployment) Deployment {
	res := Deployment{}
	for name, addr := range d {
		res[name] = addr
	}
	for name, addr := range overrides {
		if addr != (common.Address{}) {
			res[name] = addr
		}
	}
	return res
}

// DeploymentFromEnv reads the SC_*_ADDRESS overrides.
func DeploymentFromEnv() (Deployment, error) {
	res := Deployment{}
	for name, v := range overrideVariables {
		value := strings.TrimSpace(os.Getenv(v))
		if value == "" {
			continue
		}
		if !sccommon.IsHexAddress(value) {
			return nil, fmt.Errorf("%s='%s' is not an address", v, value)
		}
		res[name] = common.HexToAddress(value)
	}
	return res, nil
}
