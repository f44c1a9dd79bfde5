package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/scprotocol/scctl/config"
	"github.com/scprotocol/scctl/dashboard"
	"github.com/scprotocol/scctl/metrics"
	"github.com/scprotocol/scctl/snapshot"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the dashboard on screen, refreshed as new state is read",
	Long: `Protocol stats are read every SC_PROTOCOL_POLL_SECONDS (10 by default) and
the account every SC_ACCOUNT_POLL_SECONDS (5 by default). Press Enter to
refresh right away. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if config.MetricsAddr != "" {
			m := metrics.Default()
			unsubscribe := a.poller.Subscribe(m.SnapshotObserver())
			defer unsubscribe()
			stop := serveMetrics(ctx, config.MetricsAddr)
			defer stop()
		}

		var mu sync.Mutex
		unsubscribe := a.poller.Subscribe(func(u snapshot.Update) {
			mu.Lock()
			defer mu.Unlock()
			appUI.Clear()
			dashboard.Render(appUI, a.registry, u, dashboard.Options{Verbose: config.Verbose})
		})
		defer unsubscribe()

		go refreshOnInput(os.Stdin, a.poller.Refresh)
		a.poller.Run(ctx)
		return nil
	},
}

// refreshOnInput calls refresh for every line read from r until r is
// exhausted.
func refreshOnInput(r io.Reader, refresh func()) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		refresh()
	}
}

func serveMetrics(ctx context.Context, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
}

func init() {
	watchCmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "also show how the protocol works and every contract address")
	watchCmd.Flags().StringVar(&config.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9100")
	rootCmd.AddCommand(watchCmd)
}
