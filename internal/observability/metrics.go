package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	httpErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of requests answered with an error envelope",
		},
		[]string{"method", "path", "code"},
	)

	casesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_created_total",
			Help: "Total number of cases created",
		},
		[]string{"type"},
	)

	caseStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_status_changes_total",
			Help: "Total number of case status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	caseAssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "case_assignments_total",
			Help: "Total number of case assignment changes",
		},
	)

	trackLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "track_lookups_total",
			Help: "Public tracking lookups by outcome",
		},
		[]string{"result"},
	)
)

// RecordRequest observes a completed HTTP request.
func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError counts a request answered with a domain error code.
func RecordError(method, path, code string) {
	httpErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCaseCreated counts a new case by type.
func RecordCaseCreated(caseType string) {
	casesCreatedTotal.WithLabelValues(caseType).Inc()
}

// RecordStatusChange counts a lifecycle transition.
func RecordStatusChange(from, to string) {
	caseStatusChangesTotal.WithLabelValues(from, to).Inc()
}

// RecordAssignment counts an assignment change.
func RecordAssignment() {
	caseAssignmentsTotal.Inc()
}

// RecordTrackLookup counts a public tracking lookup by outcome
// ("hit", "miss" or "invalid").
func RecordTrackLookup(result string) {
	trackLookupsTotal.WithLabelValues(result).Inc()
}
