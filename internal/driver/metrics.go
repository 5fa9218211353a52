package driver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srxgate",
			Subsystem: "command",
			Name:      "total",
			Help:      "Total number of executed commands by kind and result",
		},
		[]string{"command", "result"},
	)

	commandRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srxgate",
			Subsystem: "command",
			Name:      "retries_total",
			Help:      "Total number of command re-executions after a failed attempt",
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal, commandRetries)
}

func recordCommand(kind string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	commandsTotal.WithLabelValues(kind, result).Inc()
}
