package contracts

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Asset is one of the tokens the engine knows about: collateral tokens users
// deposit and the stablecoin they mint against them.
type Asset string

const (
	WETH Asset = "WETH"
	WBTC Asset = "WBTC"
	SC   Asset = "SC"
)

var (
	collateralAssets = []Asset{WETH, WBTC}
	allAssets        = []Asset{WETH, WBTC, SC}

	assetAliases = map[string]Asset{
		"weth":          WETH,
		"eth":           WETH,
		"wrapped ether": WETH,
		"wbtc":          WBTC,
		"btc":           WBTC,
		"wrapped btc":   WBTC,
		"sc":            SC,
		"stablecoin":    SC,
	}
)

func CollateralAssets() []Asset {
	return append([]Asset{}, collateralAssets...)
}

func AllAssets() []Asset {
	return append([]Asset{}, allAssets...)
}

func (a Asset) IsCollateral() bool {
	return a == WETH || a == WBTC
}

// Decimals of the token. The deployed mocks all use 18.
func (a Asset) Decimals() uint64 {
	return 18
}

// ContractName is the logical registry name of the token contract.
func (a Asset) ContractName() Name {
	switch a {
	case WETH:
		return WETHToken
	case WBTC:
		return WBTCToken
	case SC:
		return StableCoin
	}
	return ""
}

func (a Asset) String() string {
	return string(a)
}

// ParseAsset resolves user input like "weth", "WBTC" or "wrapped" to an asset.
// Exact symbols and aliases win; otherwise the input must fuzzy match exactly
// one alias.
func ParseAsset(hint string) (Asset, error) {
	key := strings.ToLower(strings.TrimSpace(hint))
	if key == "" {
		return "", fmt.Errorf("asset is required")
	}
	if a, found := assetAliases[key]; found {
		return a, nil
	}

	aliases := make([]string, 0, len(assetAliases))
	for alias := range assetAliases {
		aliases = append(aliases, alias)
	}
	matched := map[Asset]bool{}
	for _, m := range fuzzy.Find(key, aliases) {
		matched[assetAliases[m.Str]] = true
	}
	switch len(matched) {
	case 0:
		return "", fmt.Errorf("unsupported asset '%s', supported: %v", hint, allAssets)
	case 1:
		for a := range matched {
			return a, nil
		}
	}
	return "", fmt.Errorf("asset '%s' is ambiguous, please use one of %v", hint, allAssets)
}

// ParseCollateral is ParseAsset restricted to collateral tokens.
func ParseCollateral(hint string) (Asset, error) {
	a, err := ParseAsset(hint)
	if err != nil {
		return "", err
	}
	if !a.IsCollateral() {
		return "", fmt.Errorf("%s is not a collateral asset, use one of %v", a, collateralAssets)
	}
	return a, nil
}
