package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	// UptimeSeconds tracks the board daemon uptime in seconds
	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "suiboard",
		Subsystem: "daemon",
		Name:      "uptime_seconds",
		Help:      "Time passed since the board daemon started in seconds",
	})

	// RPCRequestsTotal counts fullnode RPC requests
	RPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suiboard",
		Subsystem: "ledger",
		Name:      "rpc_requests_total",
		Help:      "RPC requests to the fullnode",
	}, []string{"method", "status"})

	// IntentsTotal counts orchestrated mutating intents by terminal state
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suiboard",
		Subsystem: "orchestrator",
		Name:      "intents_total",
		Help:      "Mutating intents (status=finalized/rejected/uncertain)",
	}, []string{"kind", "status"})

	// FinalityWaitSeconds observes how long finality confirmation took
	FinalityWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "suiboard",
		Subsystem: "orchestrator",
		Name:      "finality_wait_seconds",
		Help:      "Seconds spent waiting for transaction finality",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	// RefreshesTotal counts view refreshes per query kind
	RefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suiboard",
		Subsystem: "refresh",
		Name:      "refreshes_total",
		Help:      "View refreshes (status=success/error/coalesced)",
	}, []string{"query", "status"})

	// OverlayWritesTotal counts reservation overlay writes
	OverlayWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "suiboard",
		Subsystem: "overlay",
		Name:      "writes_total",
		Help:      "Reservation overlay writes (status=success/dropped)",
	}, []string{"status"})
)

// TrackUptime updates the uptime gauge every 10 seconds. Blocks; run in a goroutine.
func TrackUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		UptimeSeconds.Set(time.Since(startTime).Seconds())
	}
}

// TrackRPC returns a closure recording one fullnode request outcome.
func TrackRPC(method string) func(error) {
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		RPCRequestsTotal.WithLabelValues(method, status).Inc()
	}
}
