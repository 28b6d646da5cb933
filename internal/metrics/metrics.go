// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlog_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodlog_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	MoodEntriesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moodlog_mood_entries_recorded_total",
		Help: "Mood entries persisted.",
	})

	MoodEntriesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlog_mood_entries_rejected_total",
		Help: "Mood entries rejected by validation, by reason code.",
	}, []string{"code"})

	RemindersProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodlog_reminders_processed_total",
		Help: "Check-in reminder jobs handled by the worker, by outcome.",
	}, []string{"outcome"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
