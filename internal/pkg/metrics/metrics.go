package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civigate_reports_created_total",
		Help: "The total number of citizen reports created",
	}, []string{"category"})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civigate_status_changes_total",
		Help: "Total report status transitions",
	}, []string{"to"})

	QueryPath = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civigate_query_path_total",
		Help: "Report list queries by planner path",
	}, []string{"path"})

	RateLimitBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civigate_rate_limit_blocked_total",
		Help: "Citizen requests rejected by the rate limiter",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civigate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
