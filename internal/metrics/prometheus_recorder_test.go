package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveRenderDuration("content", 150*time.Millisecond)
	pr.IncRenderResult("content", ResultSuccess)
	pr.IncRenderResult("sidebar", ResultBlockNotFound)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.IncNodeResult(NodeWritten)
	pr.IncNodeResult(NodeSkipped)
	pr.IncNodeResult(NodeSkipped)
	pr.SetWorkers(4)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.InDelta(t, 1, testutil.ToFloat64(pr.renderResults.WithLabelValues("sidebar", string(ResultBlockNotFound))), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.nodeResults.WithLabelValues(string(NodeSkipped))), 0)
	require.InDelta(t, 4, testutil.ToFloat64(pr.workers), 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveRenderDuration("content", time.Second)
	pr.IncRenderResult("content", ResultFailed)
	pr.IncBuildOutcome(BuildOutcomeFailed)
	pr.IncNodeResult(NodeFailed)
	pr.SetWorkers(1)
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(BuildOutcomeWarning)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `webtree_build_outcomes_total{outcome="warning"} 1`))
}
