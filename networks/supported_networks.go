package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	Sepolia,
	Anvil,
}

var globalSupportedNetworks = newSupportedNetworks(loadCustomNetworks)
var ErrNetworkNotFound = fmt.Errorf("network not found")

type networks struct {
	networks     map[string]Network
	networksByID map[uint64]Network
}

func (n *networks) getSupportedNetworkNames() []string {
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	res, found := n.networks[name]
	if found {
		return res, nil
	}
	matches := fuzzy.Find(name, n.getSupportedNetworkNames())
	if len(matches) > 0 {
		return nil, fmt.Errorf("network name '%s' (did you mean '%s'?): %w", name, matches[0].Str, ErrNetworkNotFound)
	}
	return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
}

func (n *networks) add(network Network, override bool) error {
	names := append([]string{network.GetName()}, network.GetAlternativeNames()...)
	if !override {
		for _, name := range names {
			if _, found := n.networks[name]; found {
				return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
			}
		}
	}
	for _, name := range names {
		n.networks[name] = network
	}
	n.networksByID[network.GetChainID()] = network
	return nil
}

func newSupportedNetworks(loadCustom func() ([]Network, error)) *networks {
	result := networks{
		map[string]Network{},
		map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.add(n, false); err != nil {
			panic(err)
		}
	}

	if loadCustom == nil {
		return &result
	}
	customNetworks, err := loadCustom()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return &result
	}
	for _, n := range customNetworks {
		result.add(n, true)
	}
	return &result
}

func customNetworksDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	return filepath.Join(usr.HomeDir, ".scctl", "networks"), nil
}

// loadCustomNetworks reads ~/.scctl/networks/*.json so users can point
// scctl to forks or other deployments without rebuilding.
func loadCustomNetworks() ([]Network, error) {
	dir, err := customNetworksDir()
	if err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	networks := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}
		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue with other custom networks.\n", file, err)
			continue
		}
		networks = append(networks, network)
	}
	return networks, nil
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	if err := json.Unmarshal(content, &networkConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config needs a name and a chain id")
	}
	return NewGenericNetwork(networkConfig), nil
}

// GetSupportedNetworks returns every distinct network, ordered by name.
func GetSupportedNetworks() []Network {
	seen := map[uint64]bool{}
	res := []Network{}
	for _, n := range globalSupportedNetworks.networks {
		if seen[n.GetChainID()] {
			continue
		}
		seen[n.GetChainID()] = true
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetName() < res[j].GetName() })
	return res
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.getSupportedNetworkNames()
}

// AddNetwork saves network under ~/.scctl/networks and makes it available
// right away. Existing networks with the same names are replaced.
func AddNetwork(network Network) (string, error) {
	dir, err := customNetworksDir()
	if err != nil {
		return "", err
	}
	path, err := saveNetwork(dir, network)
	if err != nil {
		return "", err
	}
	return path, globalSupportedNetworks.add(network, true)
}

func saveNetwork(dir string, network Network) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	content, err := network.MarshalJSON()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, strings.ToLower(network.GetName())+".json")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
