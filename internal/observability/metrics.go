package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	evaluationsStartedTotal   prometheus.Counter
	evaluationsCompletedTotal *prometheus.CounterVec
	evaluationsFailedTotal    *prometheus.CounterVec
	evaluationPipelineSeconds prometheus.Histogram
	notificationsPublished    *prometheus.CounterVec
	evaluationCacheRequests   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the API and the
// evaluation pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexia_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lexia_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexia_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		evaluationsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lexia_evaluations_started_total",
			Help: "Total number of evaluation pipeline runs started.",
		})

		evaluationsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexia_evaluations_completed_total",
			Help: "Total number of evaluation pipeline runs completed.",
		}, []string{"content_type"})

		evaluationsFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexia_evaluations_failed_total",
			Help: "Total number of evaluation pipeline runs that failed.",
		}, []string{"stage"})

		evaluationPipelineSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexia_evaluation_pipeline_seconds",
			Help:    "Duration of full evaluation pipeline runs.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexia_notifications_published_total",
			Help: "Total number of notifications persisted and published.",
		}, []string{"type"})

		evaluationCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lexia_evaluation_cache_requests_total",
			Help: "Evaluation read-through cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			evaluationsStartedTotal,
			evaluationsCompletedTotal,
			evaluationsFailedTotal,
			evaluationPipelineSeconds,
			notificationsPublished,
			evaluationCacheRequests,
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

// EvaluationsStartedTotal exposes the counter for started pipeline runs.
func EvaluationsStartedTotal() prometheus.Counter {
	RegisterMetrics()
	return evaluationsStartedTotal
}

// EvaluationsCompletedTotal exposes the counter for completed pipeline runs.
func EvaluationsCompletedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsCompletedTotal
}

// EvaluationsFailedTotal exposes the counter for failed pipeline runs.
func EvaluationsFailedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsFailedTotal
}

// EvaluationPipelineDuration exposes the pipeline duration histogram.
func EvaluationPipelineDuration() prometheus.Histogram {
	RegisterMetrics()
	return evaluationPipelineSeconds
}

// NotificationsPublishedTotal exposes the notification fan-out counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// EvaluationCacheRequests exposes the evaluation cache lookup counter.
func EvaluationCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationCacheRequests
}
