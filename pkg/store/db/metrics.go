package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var backendOpSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "itte_backend_op_seconds",
		Help:    "Latency of storage backend operations.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	},
	[]string{"backend", "op"},
)

func init() {
	prometheus.MustRegister(backendOpSeconds)
}

// ObserveOp records the latency of one backend operation started at start.
//
//	defer db.ObserveOp("pebble", "get", time.Now())
func ObserveOp(backend, op string, start time.Time) {
	backendOpSeconds.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
