package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scprotocol/scctl/networks"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

var networkCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"network"},
	Short:   "Show the supported networks and their nodes",
	Long:    ``,
	Run: func(cmd *cobra.Command, args []string) {
		for i, n := range networks.GetSupportedNetworks() {
			appUI.Info("%d. %s, chain ID %d, block time %s", i+1, n.GetName(), n.GetChainID(), n.GetBlockTime())
			u := appUI.Indent()
			if alt := n.GetAlternativeNames(); len(alt) > 0 {
				u.Info("Also known as: %s", strings.Join(alt, ", "))
			}
			if v := n.GetNodeVariableName(); v != "" {
				u.Info("Node env var: %s", v)
			}
			nodes := networks.GetNodes(n)
			names := make([]string, 0, len(nodes))
			for name := range nodes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				u.Info("- %s: %s", name, nodes[name])
			}
		}
		appUI.Info("")
		appUI.Info("Add a network with: scctl networks add --config <json or file>")
	},
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a network to the supported networks list locally",
	Long: `--config takes a network config json, or the path to a json file, in the following format:
	{
		"name": "network_name",
		"alternative_names": ["alternative_name_1"],
		"chain_id": 31337,
		"native_token_symbol": "ETH",
		"native_token_decimal": 18,
		"block_time": 2,
		"node_variable_name": "MY_NODE",
		"default_nodes": {"node_name_1": "node_url_1"},
		"multi_call_contract_address": "0xcA11bde05977b3631167028862bE2a173976CA11",
		"testnet": true
	}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.TrimSpace(NetworkConfig)
		if content == "" {
			return fmt.Errorf("--config is required")
		}
		if !strings.HasPrefix(content, "{") {
			raw, err := os.ReadFile(content)
			if err != nil {
				return fmt.Errorf("couldn't read the network config file: %w", err)
			}
			content = string(raw)
		}
		n, err := networks.NewNetworkFromJSON([]byte(content))
		if err != nil {
			return fmt.Errorf("the provided json is not a valid network config: %w", err)
		}

		for _, name := range append([]string{n.GetName()}, n.GetAlternativeNames()...) {
			if _, err := networks.GetNetwork(name); err == nil {
				if !NetworkForce {
					return fmt.Errorf("network with name %s already exists, use --force to replace it", name)
				}
				appUI.Warn("Network %s already exists, replacing it.", name)
			}
		}
		path, err := networks.AddNetwork(n)
		if err != nil {
			return err
		}
		appUI.Success("Network %s with chain ID %d saved to %s.", n.GetName(), n.GetChainID(), path)
		return nil
	},
}

func init() {
	addNetworkCmd.Flags().StringVar(&NetworkConfig, "config", "", "network config json or path to a json file")
	addNetworkCmd.Flags().BoolVar(&NetworkForce, "force", false, "replace networks with the same names")
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
