package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scprotocol/scctl/config"
	"github.com/scprotocol/scctl/contracts"
	"github.com/scprotocol/scctl/dashboard"
	"github.com/scprotocol/scctl/metrics"
	"github.com/scprotocol/scctl/snapshot"
	"github.com/scprotocol/scctl/txflow"
	"github.com/scprotocol/scctl/ui"
	"github.com/scprotocol/scctl/wallet"
)

const maxKeyword = "max"

// parseActionArgs reads "<asset> <amount>" for collateral actions and
// "<amount>" for debt actions.
func parseActionArgs(kind txflow.Kind, args []string) (contracts.Asset, string, error) {
	switch kind {
	case txflow.Deposit, txflow.Withdraw:
		if len(args) != 2 {
			return "", "", fmt.Errorf("%s needs an asset and an amount, e.g. %s weth 1.5", kind, kind)
		}
		asset, err := contracts.ParseCollateral(args[0])
		if err != nil {
			return "", "", err
		}
		return asset, strings.TrimSpace(args[1]), nil
	default:
		if len(args) != 1 {
			return "", "", fmt.Errorf("%s needs an amount, e.g. %s 100", kind, kind)
		}
		return contracts.SC, strings.TrimSpace(args[0]), nil
	}
}

// resolveAmount expands "max" with the helper of kind. interpreted is
// true when the input was rewritten.
func resolveAmount(kind txflow.Kind, asset contracts.Asset, raw string, update snapshot.Update) (amount string, interpreted bool) {
	if !strings.EqualFold(raw, maxKeyword) {
		return raw, false
	}
	return dashboard.MaxAmount(kind, asset, update.Protocol, update.Account), true
}

// transitionPrinter reports hook progress, with a spinner while a tx is
// pending.
func transitionPrinter(u ui.UI) txflow.Observer {
	stop := func() {}
	return func(t txflow.Transition) {
		if t.Sent() {
			u.Critical("Broadcasted %s tx: %s", t.To.Step(), t.TxHash.Hex())
			return
		}
		stop()
		stop = func() {}
		if t.To.Step().Pending() {
			stop = u.Spinner(dashboard.ButtonLabel(t.Kind, t.Asset, t.To.Step()))
		}
	}
}

// newActionHook builds the hook of kind with progress output and tx
// metrics attached.
func newActionHook(u ui.UI, kind txflow.Kind, reg *contracts.Registry, sender wallet.Sender, allowances txflow.AllowanceReader) *txflow.Hook {
	hook := txflow.NewHook(kind, reg, sender, allowances)
	hook.Observe(transitionPrinter(u))
	hook.Observe(metrics.Default().ObserveTransition)
	return hook
}

func pushMetrics(ctx context.Context, network string) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := metrics.Push(pushCtx, config.MetricsPushURL, network); err != nil {
		appUI.Warn("Couldn't push metrics to %s: %s", config.MetricsPushURL, err)
		return
	}
	slog.Info("pushed metrics", "url", config.MetricsPushURL)
}

func runAction(ctx context.Context, kind txflow.Kind, args []string) error {
	asset, raw, err := parseActionArgs(kind, args)
	if err != nil {
		return err
	}
	a, err := newApp(true)
	if err != nil {
		return err
	}
	sender, ok := a.wallet.(wallet.Sender)
	if !ok {
		return wallet.ErrReadOnly
	}

	stop := appUI.Spinner("Reading your position...")
	update := a.poller.Fetch(ctx)
	stop()

	amount, interpreted := resolveAmount(kind, asset, raw, update)
	if interpreted {
		appUI.Interpret(fmt.Sprintf("%s %s", amount, asset))
	}
	in := dashboard.ActionInput{Kind: kind, Asset: asset, Amount: amount, State: txflow.Idle()}
	dashboard.Manager(appUI, in, update.Protocol, update.Account)
	if dashboard.ButtonDisabled(in) {
		return fmt.Errorf("'%s' is not a positive %s amount", amount, asset)
	}

	if !config.Yes && !appUI.Confirm(fmt.Sprintf("%s %s %s?", kind, amount, asset), false) {
		appUI.Warn("Aborted!")
		return nil
	}

	if config.MetricsAddr != "" {
		stop := serveMetrics(ctx, config.MetricsAddr)
		defer stop()
	}
	if config.MetricsPushURL != "" {
		defer pushMetrics(ctx, a.registry.Network().GetName())
	}

	hook := newActionHook(appUI, kind, a.registry, sender, a.reader)
	res, err := hook.Execute(ctx, asset, amount)
	if err != nil {
		return err
	}

	in.State = res.State
	dashboard.Manager(appUI, in, update.Protocol, update.Account)
	if res.State.Step() != txflow.StepSuccess {
		return fmt.Errorf("%s failed while %s", kind, res.State.FailedAt())
	}

	update = a.poller.Fetch(ctx)
	dashboard.Position(appUI, update.Protocol, update.Account)
	return nil
}

func newActionCmd(kind txflow.Kind, use, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Long: fmt.Sprintf(`Amounts are in token units, e.g. 1.5. "%s" uses the largest amount the
dashboard would suggest. Deposit and burn send an approve tx first when the
engine's allowance is too low.`, maxKeyword),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd.Context(), kind, args)
		},
	}
	c.Flags().StringVar(&config.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while the transactions run")
	c.Flags().StringVar(&config.MetricsPushURL, "metrics-push", "", "pushgateway url to push the tx metrics to before exiting")
	return c
}

func init() {
	rootCmd.AddCommand(
		newActionCmd(txflow.Deposit, "deposit <asset> <amount|max>", "Deposit WETH or WBTC as collateral"),
		newActionCmd(txflow.Withdraw, "withdraw <asset> <amount|max>", "Withdraw deposited collateral"),
		newActionCmd(txflow.Mint, "mint <amount|max>", "Mint SC against your collateral"),
		newActionCmd(txflow.Burn, "burn <amount|max>", "Burn SC to repay debt"),
	)
}
