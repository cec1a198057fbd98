package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	submissionsTotal     *prometheus.CounterVec
	testCasesTotal       *prometheus.CounterVec
	persistFailuresTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codequest",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codequest",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "route"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codequest",
			Name:      "submissions_graded_total",
			Help:      "Total number of graded submissions by verdict.",
		}, []string{"verdict"})

		testCasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codequest",
			Name:      "test_cases_evaluated_total",
			Help:      "Total number of evaluated test cases by status and failure kind.",
		}, []string{"status", "failure"})

		persistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "codequest",
			Name:      "solution_persist_failures_total",
			Help:      "Total number of graded submissions whose solution could not be stored.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, submissionsTotal, testCasesTotal, persistFailuresTotal)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// SubmissionsGraded exposes the counter of graded submissions.
func SubmissionsGraded() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// TestCasesEvaluated exposes the counter of evaluated test cases.
func TestCasesEvaluated() *prometheus.CounterVec {
	RegisterMetrics()
	return testCasesTotal
}

// SolutionPersistFailures exposes the counter of failed solution writes.
func SolutionPersistFailures() prometheus.Counter {
	RegisterMetrics()
	return persistFailuresTotal
}
