package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDecision(t *testing.T) {
	m := NewMetrics()

	m.RecordDecision("allow")
	m.RecordDecision("allow")
	m.RecordDecision("deny")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.authDecisions.WithLabelValues("allow")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.authDecisions.WithLabelValues("deny")))
}

func TestRecordStep(t *testing.T) {
	m := NewMetrics()

	m.RecordStep("delete_identity", "soft_fail")
	m.RecordStep("delete_identity", "ok")
	m.RecordStep("delete_identity", "ok")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.cascadeSteps.WithLabelValues("delete_identity", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cascadeSteps.WithLabelValues("delete_identity", "soft_fail")))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordDecision("allow")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "menuforge_authz_decisions_total")
}
