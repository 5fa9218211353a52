package usage

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/srxgate/internal/util/naming"
)

var (
	usageBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "srxgate",
			Subsystem: "usage",
			Name:      "bytes",
			Help:      "Bytes counted by the appliance per public address or guest VLAN at the last poll",
		},
		[]string{"key", "direction"},
	)

	usagePolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srxgate",
			Subsystem: "usage",
			Name:      "polls_total",
			Help:      "Total number of usage polls by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(usageBytes, usagePolls)
}

func recordPoll(totals Totals, err error) {
	if err != nil {
		usagePolls.WithLabelValues("error").Inc()
		return
	}
	usagePolls.WithLabelValues("success").Inc()
	for key, t := range totals {
		usageBytes.WithLabelValues(key.String(), string(naming.DirectionIn)).Set(float64(t.BytesReceived))
		usageBytes.WithLabelValues(key.String(), string(naming.DirectionOut)).Set(float64(t.BytesSent))
	}
}
