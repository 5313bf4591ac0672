package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// given
	m := New()
	// when
	m.Mutation("add", OutcomeSuccess)
	m.Mutation("add", OutcomeSuccess)
	m.Mutation("add", OutcomeRejected)
	m.Table(3, 1)
	m.Alert(OutcomeSuccess)
	m.Report("pdf", OutcomeFailed)
	// then
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("add", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("add", OutcomeRejected)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.products))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lowStock))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alerts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues("pdf", OutcomeFailed)))
}

func TestMetrics_Handler(t *testing.T) {
	// given
	m := New()
	m.Table(2, 0)
	rr := httptest.NewRecorder()
	// when
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "stockguard_products 2")
}
