package networks

import (
	"os"
	"strings"
)

// legacyNodeVariables are env vars the web front-end used to point at a node.
// They are honored after the network's own variable.
var legacyNodeVariables = map[string][]string{
	"sepolia": {"SEPOLIA_RPC_URL", "NEXT_PUBLIC_SEPOLIA_RPC_URL"},
}

// GetNodes returns the nodes scctl should talk to for the network. A custom
// node set through env vars replaces the default nodes entirely.
func GetNodes(n Network) map[string]string {
	vars := append([]string{n.GetNodeVariableName()}, legacyNodeVariables[n.GetName()]...)
	for _, v := range vars {
		if v == "" {
			continue
		}
		if url := strings.TrimSpace(os.Getenv(v)); url != "" {
			return map[string]string{"custom-node": url}
		}
	}
	return n.GetDefaultNodes()
}
