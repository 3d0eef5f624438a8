package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	shellTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fluidctl",
			Subsystem: "shell",
			Name:      "transactions_total",
			Help:      "Total engine shell transactions.",
		},
		[]string{"mode", "outcome"},
	)
	shellDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fluidctl",
			Subsystem: "shell",
			Name:      "transaction_duration_seconds",
			Help:      "Blocking transaction duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	engineSpawns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fluidctl",
			Subsystem: "engine",
			Name:      "spawns_total",
			Help:      "Engine subprocess launches by the supervisor.",
		},
	)
	engineConnectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fluidctl",
			Subsystem: "engine",
			Name:      "connect_attempts_total",
			Help:      "Supervisor dial attempts toward the engine shell.",
		},
		[]string{"outcome"},
	)
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fluidctl",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Status API requests.",
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			shellTransactions,
			shellDuration,
			engineSpawns,
			engineConnectAttempts,
			apiRequests,
		)
	})
}

func RecordTransaction(mode, outcome string, duration time.Duration) {
	RegisterMetrics()
	shellTransactions.WithLabelValues(mode, outcome).Inc()
	if mode == "blocking" {
		shellDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

func RecordEngineSpawn() {
	RegisterMetrics()
	engineSpawns.Inc()
}

func RecordConnectAttempt(ok bool) {
	RegisterMetrics()
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	engineConnectAttempts.WithLabelValues(outcome).Inc()
}

func RecordAPIRequest(method, path string, status int) {
	RegisterMetrics()
	apiRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
