package replica

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esurat_replica_refresh_total",
			Help: "Full collection re-fetches performed by the replica.",
		},
		[]string{"collection", "trigger"},
	)

	backendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esurat_backend_errors_total",
			Help: "Failed backend calls by collection and operation.",
		},
		[]string{"collection", "op"},
	)
)
