package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Membership metrics
	MembershipTransitionsTotal prometheus.CounterVec

	// List metrics
	WatchEventsTotal       prometheus.CounterVec
	HistoryTrimsTotal      prometheus.Counter
	WatchLaterOpsTotal     prometheus.CounterVec
	PlaylistMutationsTotal prometheus.CounterVec

	// Video metrics
	VideosPublishedTotal prometheus.Counter
	VideoUploadDuration  prometheus.Histogram

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of in-flight HTTP requests",
				},
				[]string{"method", "path"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"endpoint", "method"},
			),
			MembershipTransitionsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "membership_transitions_total",
					Help: "Membership state transitions by resulting status",
				},
				[]string{"transition"},
			),
			WatchEventsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "watch_events_total",
					Help: "Watch history writes, split by new watches and rewatches",
				},
				[]string{"kind"},
			),
			HistoryTrimsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "watch_history_trims_total",
					Help: "Times a watch history exceeded its cap and was trimmed",
				},
			),
			WatchLaterOpsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "watch_later_operations_total",
					Help: "Watch later queue operations",
				},
				[]string{"operation"},
			),
			PlaylistMutationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "playlist_mutations_total",
					Help: "Playlist content mutations",
				},
				[]string{"operation"},
			),
			VideosPublishedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "videos_published_total",
					Help: "Videos published",
				},
			),
			VideoUploadDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "video_upload_duration_seconds",
					Help:    "Time spent uploading video files to object storage",
					Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
			),
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Application errors by type and endpoint",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

// RecordMembershipTransition counts a state machine transition
func RecordMembershipTransition(transition string) {
	Get().MembershipTransitionsTotal.WithLabelValues(transition).Inc()
}

// RecordWatchEvent counts a history write
func RecordWatchEvent(kind string) {
	Get().WatchEventsTotal.WithLabelValues(kind).Inc()
}
