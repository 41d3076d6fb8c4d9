package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the prometheus registry exposed on /api/metrics
var Registry = prometheus.NewRegistry()

var (
	// Custom histogram buckets optimized for API response times ranging from
	// milliseconds to multi-second database operations
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics
	DBRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_size_items",
			Help: "Number of items currently held per cache",
		},
		[]string{"cache_name"},
	)

	// Storage Client Metrics
	StorageRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	RequestsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_mentorship_requests_created_total",
			Help: "Total number of mentorship requests created",
		},
		[]string{"status"},
	)

	RequestStatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_request_status_transitions_total",
			Help: "Total number of request status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	RequestTransitionConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_request_transition_conflicts_total",
			Help: "Total number of request transitions lost to a concurrent update",
		},
		[]string{"to_status"},
	)

	RequestsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skillbridge_requests_expired_total",
			Help: "Total number of pending requests cancelled by the expiry reaper",
		},
	)

	SessionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_sessions_created_total",
			Help: "Total number of mentorship sessions created",
		},
		[]string{"status"},
	)

	SessionStatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_session_status_transitions_total",
			Help: "Total number of session status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	SessionFeedbackSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_session_feedback_total",
			Help: "Total number of session feedback submissions",
		},
		[]string{"role"},
	)

	ProfileUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_profile_updates_total",
			Help: "Total number of profile updates",
		},
		[]string{"status"},
	)

	AvatarUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skillbridge_avatar_uploads_total",
			Help: "Total number of avatar uploads",
		},
		[]string{"status"},
	)
)

// Init registers all metrics with the registry, along with Go runtime and
// process collectors
func Init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		HTTPRequestTotal,
		ActiveRequests,
		DBRequestDuration,
		DBRequestTotal,
		CacheHits,
		CacheMisses,
		CacheSize,
		StorageRequestDuration,
		StorageRequestTotal,
		RequestsCreated,
		RequestStatusTransitions,
		RequestTransitionConflicts,
		RequestsExpired,
		SessionsCreated,
		SessionStatusTransitions,
		SessionFeedbackSubmissions,
		ProfileUpdates,
		AvatarUploads,
	)
}

// MeasureDuration returns the elapsed time since start in seconds
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
