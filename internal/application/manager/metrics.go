// ABOUTME: Prometheus collectors for Snapcast connections and notifications
// ABOUTME: Registered on the default registry and served from /metrics
package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harper/snapmeta/internal/domain"
)

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapmeta",
			Name:      "notifications_total",
			Help:      "Stream notifications dispatched to callbacks",
		},
		[]string{"server", "kind"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapmeta",
			Name:      "errors_total",
			Help:      "Errors surfaced by Snapcast control clients",
		},
		[]string{"server", "kind"},
	)

	connectedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "snapmeta",
			Name:      "connected",
			Help:      "1 while the control connection is open",
		},
		[]string{"server"},
	)

	reconnectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snapmeta",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts scheduled after a transport failure",
		},
		[]string{"server"},
	)
)

func init() {
	prometheus.MustRegister(notificationsTotal, errorsTotal, connectedGauge, reconnectsTotal)
}

func errorKind(err error) string {
	switch {
	case domain.IsTransportError(err):
		return "transport"
	case domain.IsMalformedFrame(err):
		return "malformed_frame"
	default:
		return "other"
	}
}
