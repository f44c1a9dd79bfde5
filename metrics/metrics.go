// Package metrics exposes prometheus counters for transaction flows and
// snapshot refreshes. Collectors are registered on first use.
package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/scprotocol/scctl/position"
	"github.com/scprotocol/scctl/snapshot"
	"github.com/scprotocol/scctl/txflow"
)

type Metrics struct {
	transitions  *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
	sent         *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
	healthFactor prometheus.Gauge
}

var (
	once     sync.Once
	registry *Metrics
)

func Default() *Metrics {
	once.Do(func() {
		registry = &Metrics{
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "scctl",
				Subsystem: "txflow",
				Name:      "transitions_total",
				Help:      "State changes of transaction flows by action and target step.",
			}, []string{"action", "step"}),
			outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "scctl",
				Subsystem: "txflow",
				Name:      "outcomes_total",
				Help:      "Finished transaction flows by action, outcome and failing step.",
			}, []string{"action", "outcome", "failed_at"}),
			sent: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "scctl",
				Subsystem: "txflow",
				Name:      "sent_total",
				Help:      "Broadcasted transactions by action and step.",
			}, []string{"action", "step"}),
			refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "scctl",
				Subsystem: "snapshot",
				Name:      "refreshes_total",
				Help:      "Snapshot replacements by kind and whether every field was read.",
			}, []string{"kind", "result"}),
			healthFactor: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "scctl",
				Subsystem: "account",
				Name:      "health_factor",
				Help:      "Last health factor read for the watched account, +Inf without debt.",
			}),
		}
		prometheus.MustRegister(
			registry.transitions,
			registry.outcomes,
			registry.sent,
			registry.refreshes,
			registry.healthFactor,
		)
	})
	return registry
}

// ObserveTransition records one hook notification. It can be passed to
// txflow.Hook.Observe as is.
func (m *Metrics) ObserveTransition(t txflow.Transition) {
	if m == nil {
		return
	}
	action := string(t.Kind)
	if t.Sent() {
		m.sent.WithLabelValues(action, t.To.Step().String()).Inc()
		return
	}
	m.transitions.WithLabelValues(action, t.To.Step().String()).Inc()
	switch t.To.Step() {
	case txflow.StepSuccess:
		m.outcomes.WithLabelValues(action, "success", "").Inc()
	case txflow.StepError:
		m.outcomes.WithLabelValues(action, "error", t.To.FailedAt().String()).Inc()
	}
}

// SnapshotObserver returns a poller subscriber. Only snapshots that were
// replaced since the previous update are counted.
func (m *Metrics) SnapshotObserver() func(snapshot.Update) {
	var (
		mu          sync.Mutex
		lastProto   *snapshot.ProtocolSnapshot
		lastAccount *snapshot.AccountSnapshot
	)
	return func(u snapshot.Update) {
		if m == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if u.Protocol != nil && u.Protocol != lastProto {
			lastProto = u.Protocol
			m.refreshes.WithLabelValues("protocol", result(u.Protocol.Complete())).Inc()
		}
		if u.Account != nil && u.Account != lastAccount {
			lastAccount = u.Account
			m.refreshes.WithLabelValues("account", result(u.Account.Complete())).Inc()
			if u.Account.HasField(snapshot.FieldHealthFactor) {
				m.healthFactor.Set(position.NewHealthFactor(u.Account.HealthFactor).Float64())
			}
		}
	}
}

func result(complete bool) string {
	if complete {
		return "complete"
	}
	return "partial"
}

func Handler() http.Handler {
	Default()
	return promhttp.Handler()
}

// Push sends every registered metric to the pushgateway at url under the
// "scctl" job, grouped by network.
func Push(ctx context.Context, url, network string) error {
	Default()
	return push.New(url, "scctl").
		Gatherer(prometheus.DefaultGatherer).
		Grouping("network", network).
		PushContext(ctx)
}
