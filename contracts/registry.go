package contracts

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/scprotocol/scctl/networks"
)

// Name is the logical name of a contract scctl talks to.
type Name string

const (
	StableCoin       Name = "StableCoin"
	StableCoinEngine Name = "StableCoinEngine"
	WETHToken        Name = "WETH"
	WBTCToken        Name = "WBTC"
)

var protocolContracts = []Name{StableCoin, StableCoinEngine, WETHToken, WBTCToken}

var labels = map[Name]string{
	StableCoin:       "StableCoin (SC)",
	StableCoinEngine: "StableCoinEngine",
	WETHToken:        "WETH Token",
	WBTCToken:        "WBTC Token",
}

type Contract struct {
	Name    Name
	Label   string
	Address common.Address
	ABI     *abi.ABI
}

// Registry is the read only set of protocol contracts deployed on one
// network.
type Registry struct {
	network   networks.Network
	contracts map[Name]Contract
}

// NewRegistry builds the registry of network from its deployment addresses.
// Every protocol contract must have a non zero address.
func NewRegistry(network networks.Network, deployment Deployment) (*Registry, error) {
	r := &Registry{
		network:   network,
		contracts: map[Name]Contract{},
	}
	for _, name := range protocolContracts {
		addr, found := deployment[name]
		if !found || addr == (common.Address{}) {
			return nil, fmt.Errorf(
				"%s has no address on %s, set %s or pass a deployments file",
				name, network.GetName(), overrideVariables[name],
			)
		}
		contractABI := erc20ABI
		if name == StableCoinEngine {
			contractABI = engineABI
		}
		r.contracts[name] = Contract{
			Name:    name,
			Label:   labels[name],
			Address: addr,
			ABI:     contractABI,
		}
	}
	return r, nil
}

func (r *Registry) Network() networks.Network {
	return r.network
}

// Get panics on names that are not part of the protocol, they are a
// programming error rather than a user one.
func (r *Registry) Get(name Name) Contract {
	c, found := r.contracts[name]
	if !found {
		panic(fmt.Sprintf("contract %s is not registered", name))
	}
	return c
}

func (r *Registry) Engine() Contract {
	return r.Get(StableCoinEngine)
}

func (r *Registry) Token(a Asset) Contract {
	return r.Get(a.ContractName())
}

// Multicall returns the network's multicall contract, ok is false when the
// network has none.
func (r *Registry) Multicall() (Contract, bool) {
	addr := r.network.MultiCallContract()
	if addr == "" {
		return Contract{}, false
	}
	return Contract{
		Name:    "Multicall3",
		Label:   "Multicall3",
		Address: common.HexToAddress(addr),
		ABI:     multicallABI,
	}, true
}

// All returns the protocol contracts in display order.
func (r *Registry) All() []Contract {
	res := make([]Contract, 0, len(protocolContracts))
	for _, name := range protocolContracts {
		res = append(res, r.contracts[name])
	}
	return res
}

// AssetOf maps a token address back to its asset.
func (r *Registry) AssetOf(addr common.Address) (Asset, bool) {
	for _, a := range allAssets {
		if r.Token(a).Address == addr {
			return a, true
		}
	}
	return "", false
}
