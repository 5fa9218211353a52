package junos

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srxgate",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of appliance RPC round trips by operation and result",
		},
		[]string{"operation", "result"},
	)

	rpcLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srxgate",
			Subsystem: "rpc",
			Name:      "latency_seconds",
			Help:      "Latency of appliance RPC round trips in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(rpcRequestsTotal, rpcLatency)
}

func recordRPC(op string, err error, d time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	rpcRequestsTotal.WithLabelValues(op, result).Inc()
	rpcLatency.WithLabelValues(op).Observe(d.Seconds())
}
