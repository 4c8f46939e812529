package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsLive tracks currently open client transports.
	ConnectionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "peerlink_connections_live",
		Help: "Number of currently open client connections.",
	})

	// RoomsLive tracks rooms currently present in the registry.
	RoomsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "peerlink_rooms_live",
		Help: "Number of rooms currently registered.",
	})

	// RoomsCreated counts successful room creations.
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peerlink_rooms_created_total",
		Help: "Total number of rooms created.",
	})

	// RoomsExpired counts rooms torn down by the expiry timer.
	RoomsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peerlink_rooms_expired_total",
		Help: "Total number of rooms removed after their inactivity deadline.",
	})

	// CreateFailures counts creates rejected because the code space was full.
	CreateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peerlink_create_failures_total",
		Help: "Total number of creates rejected for lack of a free room code.",
	})

	// SignalsRelayed counts per-recipient signal deliveries.
	SignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peerlink_signals_relayed_total",
		Help: "Total number of signal envelopes delivered to recipients.",
	})

	// SignalsDropped counts per-recipient deliveries dropped because the
	// recipient was slow or already closed.
	SignalsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peerlink_signals_dropped_total",
		Help: "Total number of signal envelopes dropped for slow or closed recipients.",
	})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
