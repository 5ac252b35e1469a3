package sharing

import "github.com/prometheus/client_golang/prometheus"

var (
	nativeCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharingd",
			Subsystem: "native",
			Name:      "calls_total",
			Help:      "Native service calls by operation and outcome",
		},
		[]string{"op", "result"},
	)

	droppedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sharingd",
			Subsystem: "native",
			Name:      "dropped_events_total",
			Help:      "Native notifications whose payload could not be converted",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(nativeCallsTotal, droppedEventsTotal)
}

func recordCall(op string, code int32) {
	result := "ok"
	if code != 0 {
		result = "error"
	}
	nativeCallsTotal.WithLabelValues(op, result).Inc()
}
