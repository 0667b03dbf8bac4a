package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCompletionCountsTokensOnSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, nil)

	r.ObserveCompletion("gemini-2.0-flash-exp", "s1", 120, 80, true, "", 200*time.Millisecond)

	prompt := r.tokensTotal.WithLabelValues("gemini-2.0-flash-exp", "s1", "prompt")
	completion := r.tokensTotal.WithLabelValues("gemini-2.0-flash-exp", "s1", "completion")
	assert.Equal(t, 120.0, testutil.ToFloat64(prompt))
	assert.Equal(t, 80.0, testutil.ToFloat64(completion))
}

func TestObserveCompletionSkipsTokensOnError(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, nil)

	r.ObserveCompletion("gemini-2.0-flash-exp", "s1", 120, 80, false, "rate_limit", time.Second)

	errored := r.requestsTotal.WithLabelValues("gemini-2.0-flash-exp", "s1", "error", "rate_limit")
	assert.Equal(t, 1.0, testutil.ToFloat64(errored))
	prompt := r.tokensTotal.WithLabelValues("gemini-2.0-flash-exp", "s1", "prompt")
	assert.Equal(t, 0.0, testutil.ToFloat64(prompt))
}

func TestObserveTurnAndUploadCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, nil)

	r.ObserveTurn("message", "buttons", "en-IN")
	r.ObserveTurn("message", "buttons", "en-IN")
	r.ObserveUpload(true)
	r.ObserveGeoLookup("geocode", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.turnsTotal.WithLabelValues("message", "buttons", "en-IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.uploadsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.geoLookupsTotal.WithLabelValues("geocode", "error")))
}

func TestActiveSessionsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, func() int { return 7 })

	assert.Equal(t, 7.0, testutil.ToFloat64(r.activeSessions))
}
