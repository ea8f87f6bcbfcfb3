package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the realtime layer's Prometheus instruments. They are
// registered once on the default registry at package init.
var metrics = struct {
	activeConnections prometheus.Gauge
	eventsReceived    *prometheus.CounterVec
	eventsBroadcast   *prometheus.CounterVec
	deliveriesSent    prometheus.Counter
	deliveriesDropped prometheus.Counter
}{
	activeConnections: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voiceflow_active_connections",
		Help: "Number of currently open realtime connections.",
	}),
	eventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voiceflow_events_received_total",
		Help: "Inbound realtime events by type, including malformed ones.",
	}, []string{"type"}),
	eventsBroadcast: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voiceflow_events_broadcast_total",
		Help: "Outbound broadcast events by type.",
	}, []string{"type"}),
	deliveriesSent: promauto.NewCounter(prometheus.CounterOpts{
		Name: "voiceflow_deliveries_sent_total",
		Help: "Per-recipient deliveries that were queued successfully.",
	}),
	deliveriesDropped: promauto.NewCounter(prometheus.CounterOpts{
		Name: "voiceflow_deliveries_dropped_total",
		Help: "Per-recipient deliveries dropped because the connection was slow or closed.",
	}),
}
