package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders accepted by the submission pipeline",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected or failed order submissions",
	}, []string{"reason"})

	CouponApplicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_applications_total",
		Help: "Total number of coupon applications",
	}, []string{"result"})

	IntegrationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "integration_failures_total",
		Help: "Total number of best-effort integration failures",
	}, []string{"collaborator"})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of admin order status transitions",
	}, []string{"from", "to"})

	OrderStatusRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_status_rejections_total",
		Help: "Total number of rejected status transitions",
	})

	SubmissionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_submission_latency_seconds",
		Help:    "Latency of the order submission pipeline",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
