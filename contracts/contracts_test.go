package contracts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/scprotocol/scctl/networks"
)

func TestParseAsset(t *testing.T) {
	cases := map[string]Asset{
		"weth":   WETH,
		" WBTC ": WBTC,
		"sc":     SC,
		"btc":    WBTC,
		"stable": SC,
	}
	for hint, want := range cases {
		got, err := ParseAsset(hint)
		require.NoError(t, err, hint)
		require.Equal(t, want, got, hint)
	}

	_, err := ParseAsset("wrapped")
	require.ErrorContains(t, err, "ambiguous")

	_, err = ParseAsset("doge")
	require.ErrorContains(t, err, "unsupported")

	_, err = ParseCollateral("sc")
	require.ErrorContains(t, err, "not a collateral")
}

func TestRegistryFromKnownDeployment(t *testing.T) {
	r, err := NewRegistry(networks.Anvil, KnownDeployment(31337))
	require.NoError(t, err)

	require.Equal(t, "getHealthFactor", r.Engine().ABI.Methods["getHealthFactor"].Name)
	require.Contains(t, r.Token(WETH).ABI.Methods, "approve")

	a, ok := r.AssetOf(r.Token(WBTC).Address)
	require.True(t, ok)
	require.Equal(t, WBTC, a)

	_, ok = r.Multicall()
	require.False(t, ok)

	all := r.All()
	require.Len(t, all, 4)
	require.Equal(t, StableCoin, all[0].Name)
}

func TestRegistryMissingAddress(t *testing.T) {
	_, err := NewRegistry(networks.Sepolia, KnownDeployment(11155111))
	require.ErrorContains(t, err, "SC_STABLE_COIN_ADDRESS")
}

func TestDeploymentOverrides(t *testing.T) {
	engine := "0x00000000000000000000000000000000000000e1"
	t.Setenv("SC_ENGINE_ADDRESS", engine)
	t.Setenv("SC_WETH_ADDRESS", "")
	env, err := DeploymentFromEnv()
	require.NoError(t, err)

	merged := KnownDeployment(31337).Merge(env)
	require.Equal(t, common.HexToAddress(engine), merged[StableCoinEngine])
	require.Equal(t, KnownDeployment(31337)[WETHToken], merged[WETHToken])

	t.Setenv("SC_WBTC_ADDRESS", "not-an-address")
	_, err = DeploymentFromEnv()
	require.Error(t, err)
}

func TestLoadDeploymentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deployments.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"StableCoin": "0x0000000000000000000000000000000000000001",
		"StableCoinEngine": "0x0000000000000000000000000000000000000002",
		"WETH": "0x0000000000000000000000000000000000000003",
		"WBTC": "0x0000000000000000000000000000000000000004"
	}`), 0o644))

	d, err := LoadDeploymentFile(path)
	require.NoError(t, err)
	r, err := NewRegistry(networks.Sepolia, d)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x2"), r.Engine().Address)

	_, ok := r.Multicall()
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`{"Oracle": "0x0000000000000000000000000000000000000001"}`), 0o644))
	_, err = LoadDeploymentFile(path)
	require.ErrorContains(t, err, "unknown contract")
}
