// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.


package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scprotocol/scctl/config"
	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/logging"
	"github.com/scprotocol/scctl/networks"
	"github.com/scprotocol/scctl/ui"
	"github.com/scprotocol/scctl/util/account"
)

var (
	appUI ui.UI = ui.NewTerminalUI()
	env   *config.Env

	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scctl",
	Short: "Terminal client for the SC collateralized stablecoin protocol",
	Long: fmt.Sprintf(`scctl reads the SC protocol and your position from the chain and sends the
transactions to manage it:

	1. Deposit WETH or WBTC as collateral, withdraw it back.
	2. Mint SC against your collateral, burn SC to repay your debt.
	3. Watch the protocol and your health factor refresh live.

Deposit and burn need an ERC20 allowance for the engine; scctl sends the
approve transaction first when the allowance is too low.

Signing key, in order of preference:
	1. --key-file with a keystore json, password from KEYSTORE_PASSWORD or prompted
	2. the %s or %s env var with a hex private key
Without a key, --address (or SC_ADDRESS / NEXT_PUBLIC_E2E_ADDRESS) gives a
read only dashboard.

Nodes can be added with the network's node env var, see "scctl networks".
Contract addresses can be overridden with --deployments or the
SC_*_ADDRESS env vars. A .env file in the working directory is loaded first.`,
		account.PrivateKeyVariables[0], account.PrivateKeyVariables[1],
	),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func setup(cmd *cobra.Command, args []string) (err error) {
	env, err = config.LoadEnv(config.EnvFile)
	if err != nil {
		return err
	}
	if err = networks.SetNetwork(config.Network); err != nil {
		return fmt.Errorf("%w. Supported networks: %v", err, networks.GetSupportedNetworkNames())
	}
	var logger *slog.Logger
	logger, logCloser, err = logging.Setup(config.LogFile, config.LogLevel, networks.CurrentNetwork().GetName())
	if err != nil {
		return err
	}
	logger.Info("starting", "command", cmd.CommandPath())
	return nil
}

func loadRegistry() (*contracts.Registry, error) {
	network := networks.CurrentNetwork()
	deployment := contracts.KnownDeployment(network.GetChainID())
	if config.DeploymentFile != "" {
		fromFile, err := contracts.LoadDeploymentFile(config.DeploymentFile)
		if err != nil {
			return nil, err
		}
		deployment = deployment.Merge(fromFile)
	}
	fromEnv, err := contracts.DeploymentFromEnv()
	if err != nil {
		return nil, err
	}
	return contracts.NewRegistry(network, deployment.Merge(fromEnv))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", "sepolia", fmt.Sprintf("network to use. Valid values: %v.", networks.GetSupportedNetworkNames()))
	rootCmd.PersistentFlags().StringVarP(&config.Address, "address", "a", "", "address to show when no signing key is configured")
	rootCmd.PersistentFlags().StringVar(&config.KeyFile, "key-file", "", "keystore json used to sign transactions")
	rootCmd.PersistentFlags().StringVar(&config.DeploymentFile, "deployments", "", "json file of contract name to address, merged over the built-in addresses")
	rootCmd.PersistentFlags().StringVar(&config.EnvFile, "env-file", "", "env file to load instead of ./.env")
	rootCmd.PersistentFlags().StringVar(&config.LogFile, "log-file", "", "write diagnostics as json lines to this file, rotated at 10MB")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&config.Yes, "yes", "y", false, "send transactions without asking for confirmation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appUI.Error("%s", err)
		stop()
		os.Exit(1)
	}
}
