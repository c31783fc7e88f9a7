package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal 按方法、路由模板、状态码统计请求数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yourtube_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yourtube_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// FeedRankDuration 推荐打分+排序的耗时，按feed类型区分
	FeedRankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yourtube_feed_rank_duration_seconds",
			Help:    "Time spent ranking the recommendation feed",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"feed_type"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yourtube_cache_requests_total",
			Help: "Redis cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)
)
