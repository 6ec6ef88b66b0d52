package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitfuzz"

var (
	CartOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "operations_total",
		Help:      "Cart store mutations by operation.",
	}, []string{"op"})

	WishlistOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "wishlist",
		Name:      "operations_total",
		Help:      "Wishlist store mutations by operation.",
	}, []string{"op"})

	PersistFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "persist_failures_total",
		Help:      "Best-effort persistence writes that failed, by store.",
	}, []string{"store"})

	CheckoutSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkout",
		Name:      "submissions_total",
		Help:      "Checkout submissions by outcome.",
	}, []string{"outcome"})

	BackendRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the storefront backend API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "storefront",
		Name:      "active_sessions",
		Help:      "Device sessions currently held in memory.",
	})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		CartOperations,
		WishlistOperations,
		PersistFailures,
		CheckoutSubmissions,
		BackendRequestDuration,
		ActiveSessions,
	}
}

// Register adds every storefront collector to reg. Collectors that are
// already registered are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveBackend records one backend call against the latency histogram.
func (t *Timer) ObserveBackend(endpoint, status string) {
	BackendRequestDuration.WithLabelValues(endpoint, status).Observe(t.Duration().Seconds())
}
