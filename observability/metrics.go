// Package observability exposes Prometheus metrics and process statistics
// for the chat service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. Delivery results are labelled with
// delivered/stale/failed so stale-connection pruning stays visible.
type Metrics struct {
	MessagesSent      *prometheus.CounterVec
	DeliveriesTotal   *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
	EventsConsumed    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentichat",
			Name:      "messages_sent_total",
			Help:      "Messages appended to the log, by message type.",
		}, []string{"type"}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentichat",
			Name:      "deliveries_total",
			Help:      "Per-connection delivery attempts, by result.",
		}, []string{"result"}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dentichat",
			Name:      "active_connections",
			Help:      "Currently open WebSocket connections.",
		}),
		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentichat",
			Name:      "events_consumed_total",
			Help:      "Marketplace events handled by the bridge, by event type.",
		}, []string{"event_type"}),
	}
	reg.MustRegister(m.MessagesSent, m.DeliveriesTotal, m.ActiveConnections, m.EventsConsumed)
	return m
}
