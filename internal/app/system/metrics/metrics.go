// internal/app/system/metrics/metrics.go
package metrics

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/devhub/internal/app/system/apperr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors. A nil *Metrics is valid and
// records nothing, so services and tests can run without a registry.
type Metrics struct {
	TeamOpsTotal        *prometheus.CounterVec
	MessagesSentTotal   prometheus.Counter
	SubscriptionsActive prometheus.Gauge
	SnapshotsDelivered  prometheus.Counter
	ResolverQueries     prometheus.Counter
	ResolverBatchIDs    prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		TeamOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devhub_team_ops_total",
			Help: "Team directory and invitation operations by outcome",
		}, []string{"op", "result"}),
		MessagesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devhub_chat_messages_sent_total",
			Help: "Chat messages appended",
		}),
		SubscriptionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devhub_chat_subscriptions_active",
			Help: "Open chat channel subscriptions",
		}),
		SnapshotsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devhub_chat_snapshots_delivered_total",
			Help: "Full channel snapshots handed to subscribers",
		}),
		ResolverQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devhub_resolver_queries_total",
			Help: "Chunked member summary queries issued",
		}),
		ResolverBatchIDs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "devhub_resolver_batch_ids",
			Help:    "Distinct ids per resolveBatch call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// Register adds the collectors, plus the Go and process collectors, to registry.
func (m *Metrics) Register(registry *prometheus.Registry) error {
	cs := []prometheus.Collector{
		m.TeamOpsTotal,
		m.MessagesSentTotal,
		m.SubscriptionsActive,
		m.SnapshotsDelivered,
		m.ResolverQueries,
		m.ResolverBatchIDs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range cs {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// Handler serves registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// ObserveOp counts one team operation. result is "ok" or the apperr kind.
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = apperr.KindOf(err).String()
	}
	m.TeamOpsTotal.WithLabelValues(op, result).Inc()
}

func (m *Metrics) MessageSent() {
	if m != nil {
		m.MessagesSentTotal.Inc()
	}
}

func (m *Metrics) SubscriptionOpened() {
	if m != nil {
		m.SubscriptionsActive.Inc()
	}
}

func (m *Metrics) SubscriptionClosed() {
	if m != nil {
		m.SubscriptionsActive.Dec()
	}
}

func (m *Metrics) SnapshotDelivered() {
	if m != nil {
		m.SnapshotsDelivered.Inc()
	}
}

// ResolverBatch records one resolveBatch call of n ids split into queries chunks.
func (m *Metrics) ResolverBatch(n, queries int) {
	if m == nil {
		return
	}
	m.ResolverBatchIDs.Observe(float64(n))
	m.ResolverQueries.Add(float64(queries))
}
