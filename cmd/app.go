package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	sccommon "github.com/scprotocol/scctl/common"
	"github.com/scprotocol/scctl/config"
	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/networks"
	"github.com/scprotocol/scctl/snapshot"
	"github.com/scprotocol/scctl/util/account"
	"github.com/scprotocol/scctl/util/broadcaster"
	"github.com/scprotocol/scctl/util/monitor"
	"github.com/scprotocol/scctl/util/reader"
	"github.com/scprotocol/scctl/wallet"
)

// app is everything a command needs, built once per invocation.
type app struct {
	registry   *contracts.Registry
	reader     *reader.EthReader
	aggregator *snapshot.Aggregator
	wallet     wallet.Wallet
	poller     *snapshot.Poller
}

// newApp wires the readers and the wallet. With needSigner a signing key
// is required; otherwise a missing key falls back to the watch address.
func newApp(needSigner bool) (*app, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	network := reg.Network()
	nodes := networks.GetNodes(network)
	multicall := ""
	if mc, ok := reg.Multicall(); ok {
		multicall = mc.Address.Hex()
	}
	r := reader.NewEthReaderGeneric(nodes, multicall)

	w, err := openWallet(network, r, nodes, needSigner)
	if err != nil {
		return nil, err
	}

	agg := snapshot.NewAggregator(reg, r)
	return &app{
		registry:   reg,
		reader:     r,
		aggregator: agg,
		wallet:     w,
		poller:     snapshot.NewPoller(agg, w, env.ProtocolInterval, env.AccountInterval),
	}, nil
}

func openWallet(network networks.Network, r *reader.EthReader, nodes map[string]string, needSigner bool) (wallet.Wallet, error) {
	signer, err := account.LoadSigner(config.KeyFile)
	switch {
	case err == nil:
		b, err := broadcaster.NewGenericBroadcaster(nodes)
		if err != nil {
			// usable as long as one node was dialed
			slog.Warn("broadcaster", "error", err)
		}
		return wallet.NewKeyWallet(
			signer,
			network.GetChainID(),
			r,
			b,
			monitor.NewGenericTxMonitor(r, network.GetBlockTime()),
		), nil
	case !errors.Is(err, account.ErrNoKey):
		return nil, fmt.Errorf("couldn't load signing key: %w", err)
	case needSigner:
		return nil, fmt.Errorf("%w: use --key-file or set %s", err, account.PrivateKeyVariables[0])
	}
	return watchWallet()
}

func watchWallet() (wallet.Wallet, error) {
	addr := config.Address
	if addr == "" {
		addr = env.WatchAddress
	}
	if addr == "" {
		return wallet.Disconnected(), nil
	}
	if !sccommon.IsHexAddress(addr) {
		return nil, fmt.Errorf("'%s' is not an address", addr)
	}
	return wallet.NewWatchWallet(common.HexToAddress(addr)), nil
}
