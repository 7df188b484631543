package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	http_server "github.com/lintang-b-s/osmrouter/pkg/http/server"
	"github.com/lintang-b-s/osmrouter/pkg/http/usecases"
	"github.com/lintang-b-s/osmrouter/pkg/spatialindex"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRoutingService struct{}

func (fakeRoutingService) ShortestPath(ctx context.Context, q usecases.RouteQuery) (*usecases.RouteResult, error) {
	return nil, util.WrapErrorf(usecases.ErrNoNearbyRoad, util.ErrNotFound, "no road near origin")
}

func (fakeRoutingService) NearestNode(lat, lon float64) (spatialindex.NearbyVertex, error) {
	panic("spatial index exploded")
}

func (fakeRoutingService) GraphSummary() usecases.GraphSummary {
	return usecases.GraphSummary{FormatVersion: 1, BoundingBox: datastructure.NewBoundingBox(0, 0, 1, 1)}
}

func newTestHandler(log *zap.Logger, opts Options) http.Handler {
	return NewAPI(log).Handler(http_server.Config{Port: 8080, WebsocketPort: 6666}, fakeRoutingService{}, opts)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHeartbeat(t *testing.T) {
	h := newTestHandler(zap.NewNop(), Options{})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())
}

func TestRecoverPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := newTestHandler(zap.New(core), Options{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/nearestNode?lat=0&lon=0", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.Equal(t, 1, logs.FilterMessage("panic while serving request").Len())
}

func TestEnforceJSON(t *testing.T) {
	h := newTestHandler(zap.NewNop(), Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/computeRoutes", strings.NewReader("origin_lat=0"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnsupportedMediaType, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/computeRoutes", strings.NewReader("{}"))
	assert.Equal(t, http.StatusBadRequest, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/computeRoutes",
		strings.NewReader(`{"origin_lat":0,"origin_lon":0,"destination_lat":0,"destination_lon":0}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := serve(h, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_NEARBY_ROAD")
}

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newTestHandler(zap.New(core), Options{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/graph", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(REQUEST_ID_HEADER)
	assert.Len(t, id, 36)

	req := httptest.NewRequest(http.MethodGet, "/api/graph", nil)
	req.Header.Set(REQUEST_ID_HEADER, "abc")
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	rec = serve(h, req)
	assert.Equal(t, "abc", rec.Header().Get(REQUEST_ID_HEADER))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	last := entries[1].ContextMap()
	assert.Equal(t, "abc", last["request_id"])
	assert.Equal(t, "10.0.0.7", last["remote_addr"])
	assert.Equal(t, int64(http.StatusOK), last["status"])
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(zap.NewNop(), Options{UseRateLimit: true, RateLimitRPS: 0.001, RateLimitBurst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(h, httptest.NewRequest(http.MethodGet, "/api/graph", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestHandler(zap.NewNop(), Options{Registry: reg})

	serve(h, httptest.NewRequest(http.MethodGet, "/api/graph", nil))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `osmrouter_total_requests{method="GET",path="/api/graph",status="200"} 1`)
}

func TestPrometheusLabelsUseRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestHandler(zap.NewNop(), Options{Registry: reg})

	for _, p := range []string{"/doc/index.html", "/doc/swagger-ui.css", "/no/such/page", "/another/random/path"} {
		serve(h, httptest.NewRequest(http.MethodGet, p, nil))
	}
	body := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Body.String()

	assert.NotContains(t, body, "index.html")
	assert.NotContains(t, body, "/no/such/page")
	assert.Contains(t, body, `osmrouter_total_requests{method="GET",path="unmatched",status="404"} 2`)
	assert.Contains(t, body, `path="/doc/*any"`)
}

func TestRouteLabel(t *testing.T) {
	router := httprouter.New()
	noop := func(http.ResponseWriter, *http.Request, httprouter.Params) {}
	router.GET("/doc/*any", noop)
	router.GET("/api/graph", noop)
	router.GET("/api/edges/:id/geometry", noop)

	testCases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/graph", "/api/graph"},
		{http.MethodGet, "/doc/", "/doc/*any"},
		{http.MethodGet, "/doc/swagger/index.html", "/doc/*any"},
		{http.MethodGet, "/api/edges/42/geometry", "/api/edges/:id/geometry"},
		{http.MethodGet, "/api/edges/42", "unmatched"},
		{http.MethodPost, "/api/graph", "unmatched"},
	}
	for _, tt := range testCases {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, routeLabel(router, httptest.NewRequest(tt.method, tt.path, nil)))
		})
	}
}

func TestRealIP(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "192.168.1.2"}, want: "192.168.1.2"},
		{name: "forwarded", headers: map[string]string{"X-Forwarded-For": " 172.16.0.1 ,10.0.0.1"}, want: "172.16.0.1"},
		{name: "garbage", headers: map[string]string{"X-Real-IP": "not-an-ip"}, want: ""},
		{name: "none", want: ""},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, realIP(req))
		})
	}
}
