package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	sccommon "github.com/scprotocol/scctl/common"
)

const erc20ABIJSON = `[
	{"type":"function","name":"name","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
	{"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"},
	{"type":"function","name":"decimals","inputs":[],"outputs":[{"name":"","type":"uint8"}],"stateMutability":"view"},
	{"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"balanceOf","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"allowance","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"error","name":"ERC20InsufficientBalance","inputs":[{"name":"sender","type":"address"},{"name":"balance","type":"uint256"},{"name":"needed","type":"uint256"}]},
	{"type":"error","name":"ERC20InsufficientAllowance","inputs":[{"name":"spender","type":"address"},{"name":"allowance","type":"uint256"},{"name":"needed","type":"uint256"}]}
]`

const engineABIJSON = `[
	{"type":"function","name":"getLiquidationThreshold","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"pure"},
	{"type":"function","name":"getLiquidationBonus","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"pure"},
	{"type":"function","name":"getCurrentStabilityFeeBps","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getProtocolReserve","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getProtocolBadDebt","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getAccountInformation","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"totalDebt","type":"uint256"},{"name":"collateralValueInUsd","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getHealthFactor","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"getCollateralBalanceOfUser","inputs":[{"name":"user","type":"address"},{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"depositCollateral","inputs":[{"name":"tokenCollateralAddress","type":"address"},{"name":"amountCollateral","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"redeemCollateral","inputs":[{"name":"tokenCollateralAddress","type":"address"},{"name":"amountCollateral","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"mintSc","inputs":[{"name":"amountScToMint","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"burnSc","inputs":[{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"error","name":"StableCoinEngine__NeedsMoreThanZero","inputs":[]},
	{"type":"error","name":"StableCoinEngine__TokenNotAllowed","inputs":[{"name":"token","type":"address"}]},
	{"type":"error","name":"StableCoinEngine__TransferFailed","inputs":[]},
	{"type":"error","name":"StableCoinEngine__BreaksHealthFactor","inputs":[{"name":"healthFactor","type":"uint256"}]},
	{"type":"error","name":"StableCoinEngine__MintFailed","inputs":[]}
]`

const multicallABIJSON = `[
	{"type":"function","name":"tryAggregate","inputs":[{"name":"requireSuccess","type":"bool"},{"name":"calls","type":"tuple[]","components":[{"name":"target","type":"address"},{"name":"callData","type":"bytes"}]}],"outputs":[{"name":"returnData","type":"tuple[]","components":[{"name":"success","type":"bool"},{"name":"returnData","type":"bytes"}]}],"stateMutability":"payable"},
	{"type":"function","name":"getEthBalance","inputs":[{"name":"addr","type":"address"}],"outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view"}
]`

var (
	erc20ABI     = sccommon.MustParseABI(erc20ABIJSON)
	engineABI    = sccommon.MustParseABI(engineABIJSON)
	multicallABI = sccommon.MustParseABI(multicallABIJSON)
)

func ERC20ABI() *abi.ABI {
	return erc20ABI
}

func EngineABI() *abi.ABI {
	return engineABI
}

func MulticallABI() *abi.ABI {
	return multicallABI
}
