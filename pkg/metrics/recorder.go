// Package metrics records and queries Prometheus metrics for dialogue
// turns and completion backends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes counters for conversation turns and completion
// requests. It satisfies the advisory metrics middleware interface.
type Recorder struct {
	turnsTotal      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeSessions  prometheus.GaugeFunc
	uploadsTotal    *prometheus.CounterVec
	geoLookupsTotal *prometheus.CounterVec
}

// NewRecorder registers the metric families with reg. Pass nil to use
// the default registerer.
func NewRecorder(reg prometheus.Registerer, sessionCount func() int) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	r := &Recorder{
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_turns_total",
				Help: "Total dialogue turns by kind, response type, and language",
			},
			[]string{"kind", "type", "language"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_completion_requests_total",
				Help: "Total completion requests by model, session, and status",
			},
			[]string{"model", "session_id", "status", "error_type"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_completion_tokens_total",
				Help: "Total tokens used in completion requests",
			},
			[]string{"model", "session_id", "type"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_completion_duration_seconds",
				Help:    "Duration of completion requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_document_uploads_total",
				Help: "Total document uploads by status",
			},
			[]string{"status"},
		),
		geoLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_geo_lookups_total",
				Help: "Total geolocation lookups by operation and status",
			},
			[]string{"operation", "status"},
		),
	}

	if sessionCount != nil {
		r.activeSessions = factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "advisor_active_sessions",
				Help: "Number of live, unexpired sessions",
			},
			func() float64 { return float64(sessionCount()) },
		)
	}

	return r
}

// ObserveTurn counts one handled dialogue turn.
func (r *Recorder) ObserveTurn(kind, responseType, language string) {
	r.turnsTotal.WithLabelValues(kind, responseType, language).Inc()
}

// ObserveCompletion records one completion request. Token counts are
// only added on success; failed requests report zero usage.
func (r *Recorder) ObserveCompletion(model, sessionID string, promptTokens, completionTokens int, success bool, errorType string, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	r.requestsTotal.WithLabelValues(model, sessionID, status, errorType).Inc()
	if success {
		r.tokensTotal.WithLabelValues(model, sessionID, "prompt").Add(float64(promptTokens))
		r.tokensTotal.WithLabelValues(model, sessionID, "completion").Add(float64(completionTokens))
	}
	r.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// ObserveUpload counts one document upload attempt.
func (r *Recorder) ObserveUpload(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	r.uploadsTotal.WithLabelValues(status).Inc()
}

// ObserveGeoLookup counts one geocode, reverse, or nearby lookup.
func (r *Recorder) ObserveGeoLookup(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	r.geoLookupsTotal.WithLabelValues(operation, status).Inc()
}
