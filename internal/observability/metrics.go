package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	solutionViewsTotal     *prometheus.CounterVec
	visibilityChangesTotal *prometheus.CounterVec
	settingsSavesTotal     *prometheus.CounterVec
	uploadRequestsTotal    *prometheus.CounterVec
	uploadRejectedTotal    *prometheus.CounterVec
	uploadLatencySeconds   prometheus.Histogram
	configCacheTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		solutionViewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solutionsheet_views_total",
			Help: "Solution sheet views by outcome.",
		}, []string{"outcome"})

		visibilityChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solutionsheet_visibility_changes_total",
			Help: "Manual show/hide overrides by action.",
		}, []string{"action"})

		settingsSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solutionsheet_settings_saves_total",
			Help: "Settings saves by result.",
		}, []string{"result"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solutionsheet_uploads_total",
			Help: "Stored solution files by MIME type.",
		}, []string{"mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solutionsheet_uploads_rejected_total",
			Help: "Rejected solution file uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solutionsheet_upload_latency_seconds",
			Help:    "Time spent validating and storing one solution file.",
			Buckets: prometheus.DefBuckets,
		})

		configCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solutionsheet_config_cache_total",
			Help: "Plugin config cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			solutionViewsTotal,
			visibilityChangesTotal,
			settingsSavesTotal,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
			configCacheTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SolutionViews counts rendered solution sheet views.
func SolutionViews() *prometheus.CounterVec {
	RegisterMetrics()
	return solutionViewsTotal
}

// VisibilityChanges counts manual show/hide overrides.
func VisibilityChanges() *prometheus.CounterVec {
	RegisterMetrics()
	return visibilityChangesTotal
}

// SettingsSaves counts settings saves.
func SettingsSaves() *prometheus.CounterVec {
	RegisterMetrics()
	return settingsSavesTotal
}

// UploadRequests counts stored files.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected files.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes per-file upload latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// ConfigCache counts config cache hits and misses.
func ConfigCache() *prometheus.CounterVec {
	RegisterMetrics()
	return configCacheTotal
}
