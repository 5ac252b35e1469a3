package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	observersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "sharingd",
			Subsystem: "registry",
			Name:      "observers",
			Help:      "Registered observers per event kind",
		},
		[]string{"event"},
	)

	dispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharingd",
			Subsystem: "registry",
			Name:      "dispatched_total",
			Help:      "Events dispatched per event kind",
		},
		[]string{"event"},
	)

	observerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharingd",
			Subsystem: "registry",
			Name:      "observer_failures_total",
			Help:      "Observer invocations that returned an error or panicked",
		},
		[]string{"event", "reason"},
	)

	nativeSubscriptionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharingd",
			Subsystem: "registry",
			Name:      "native_subscription_total",
			Help:      "Native subscribe/unsubscribe attempts by outcome",
		},
		[]string{"op", "result"},
	)
)

func init() {
	prometheus.MustRegister(observersGauge, dispatchedTotal, observerFailuresTotal, nativeSubscriptionTotal)
}

func recordSubscription(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	nativeSubscriptionTotal.WithLabelValues(op, result).Inc()
}
