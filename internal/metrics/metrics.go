// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkwell_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_post_views_total",
			Help: "Total number of post view count increments",
		},
	)

	CommentsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_comments_added_total",
			Help: "Total number of comments appended to posts",
		},
	)

	SlugCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_slug_collisions_total",
			Help: "Total number of post slug collisions resolved with a numeric suffix",
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_rate_limited_total",
			Help: "Total number of mutation requests rejected by the rate limiter",
		},
	)
)
