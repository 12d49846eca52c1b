package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCollector_ObserveFetch(t *testing.T) {
	c := New("test")

	c.ObserveFetch("comparison", "live", 20*time.Millisecond)
	c.ObserveFetch("comparison", "fallback", 10*time.Second)
	c.ObserveFetch("comparison", "fallback", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetchesTotal.WithLabelValues("comparison", "live")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.fetchesTotal.WithLabelValues("comparison", "fallback")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.fetchDuration))
}

func TestCollector_Counters(t *testing.T) {
	c := New("test")

	c.ObserveIngest(12)
	c.ObserveIngest(3)
	c.ObserveCacheWarm(4)

	assert.Equal(t, 15.0, testutil.ToFloat64(c.observationsIngested))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.cacheWarmed))
}

type stubWarmer struct {
	n   int
	err error
}

func (w stubWarmer) WarmCaches(context.Context) (int, error) { return w.n, w.err }

func TestCollector_InstrumentWarmer(t *testing.T) {
	c := New("test")

	n, err := c.InstrumentWarmer(stubWarmer{n: 5}).WarmCaches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = c.InstrumentWarmer(stubWarmer{n: 2, err: errors.New("redis down")}).WarmCaches(context.Background())
	require.Error(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(c.cacheWarmed))
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	c := New("1.2.3")

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/queries/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	r.GET("/metrics", c.Handler())

	for _, path := range []string{"/queries/1", "/queries/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/queries/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "unknown", "404")))
	assert.Zero(t, testutil.ToFloat64(c.activeRequests))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `geovis_build_info{version="1.2.3"} 1`)
	assert.Contains(t, body, "geovis_http_requests_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New("a")
	b := New("b")

	a.ObserveIngest(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.observationsIngested))
	assert.Zero(t, testutil.ToFloat64(b.observationsIngested))
	assert.NotSame(t, a.Registry(), b.Registry())
}
