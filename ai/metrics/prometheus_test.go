package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/coursebot/ai/cache"
)

func newTestExporter() *PrometheusExporter {
	cfg := DefaultConfig()
	cfg.GoCollectors = false
	return NewPrometheusExporter(cfg)
}

func TestPrometheusExporter_Routing(t *testing.T) {
	e := newTestExporter()

	e.RecordRoute("progress_report", "accepted", 1, 20*time.Millisecond)
	e.RecordRoute("progress_report", "accepted", 1, 30*time.Millisecond)
	e.RecordRoute("fallback", "reroute_limit", 4, 80*time.Millisecond)
	e.RecordReroute("problem_solve")
	e.RecordReroute("problem_solve")
	e.RecordCollaboratorError("retrieval")

	assert.InDelta(t, 2, testutil.ToFloat64(e.routeRequests.WithLabelValues("progress_report", "accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(e.routeRequests.WithLabelValues("fallback", "reroute_limit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(e.reroutes.WithLabelValues("problem_solve")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(e.collaboratorErrors.WithLabelValues("retrieval")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(e.routeAttempts))
}

func TestPrometheusExporter_FuncMetrics(t *testing.T) {
	e := newTestExporter()

	sessions := 3
	e.RegisterSessionGauge(func() int { return sessions })
	e.RegisterEmbeddingCache(func() cache.EmbeddingCacheStats {
		return cache.EmbeddingCacheStats{Hits: 7, Misses: 2, Size: 2}
	})

	expected := `
# HELP coursebot_sessions_active Number of user sessions held in memory
# TYPE coursebot_sessions_active gauge
coursebot_sessions_active 3
# HELP coursebot_embedding_cache_hits_total Query embeddings served from cache
# TYPE coursebot_embedding_cache_hits_total counter
coursebot_embedding_cache_hits_total 7
`
	require.NoError(t, testutil.GatherAndCompare(e.GetRegistry(), strings.NewReader(expected),
		"coursebot_sessions_active", "coursebot_embedding_cache_hits_total"))
}

func TestPrometheusExporter_Handler(t *testing.T) {
	e := newTestExporter()
	e.RecordRoute("material_info", "accepted", 1, 100*time.Millisecond)
	e.RecordHTTPRequest(http.MethodPost, "/api/v1/query", http.StatusOK, 120*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `coursebot_routing_requests_total{expert="material_info",reason="accepted"} 1`)
	assert.Contains(t, string(body), `coursebot_http_requests_total{code="200",method="POST",path="/api/v1/query"} 1`)
}
