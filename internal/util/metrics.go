package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of calls to the upstream store API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of calls to the upstream store API",
	}, []string{"method", "path", "status"})

	UpstreamAuthExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "upstream_auth_expired_total",
		Help: "Total number of upstream 401 responses that invalidated a session",
	})

	MalformedRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_malformed_records_total",
		Help: "Total number of upstream records dropped during validation",
	}, []string{"entity"})

	OfflineOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offline_orders_created_total",
		Help: "Total number of point-of-sale orders submitted successfully",
	})

	OfflineOrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offline_orders_failed_total",
		Help: "Total number of point-of-sale order submissions that failed",
	}, []string{"reason"})

	CartStockRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_stock_rejections_total",
		Help: "Total number of cart mutations rejected by the stock ceiling",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_logins_total",
		Help: "Total number of admin login attempts",
	}, []string{"outcome"})

	SalesExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_exports_total",
		Help: "Total number of sales report CSV exports",
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
