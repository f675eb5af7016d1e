package httptransport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/platform/metrics"
	"docverify/internal/platform/middleware"
	"docverify/pkg/platform/middleware/auth"
	"docverify/pkg/requestcontext"
)

type stubRoutes struct{ officer string }

func (s *stubRoutes) Register(r chi.Router) {
	r.Get("/verify/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (s *stubRoutes) RegisterOfficer(r chi.Router) {
	r.Post("/v1/records", func(w http.ResponseWriter, r *http.Request) {
		s.officer = requestcontext.OfficerID(r.Context())
		w.WriteHeader(http.StatusCreated)
	})
}

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.JWTClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.JWTClaims{OfficerID: "officer-7"}, nil
}

func newTestRouter(routes *stubRoutes, checks map[string]HealthCheck) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "docverify_test_total", Help: "test"}))
	return NewRouter(Deps{
		Logger:       slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Verification: routes,
		OfficerAuth:  stubValidator{},
		Gatherer:     reg,
		HTTPMetrics:  metrics.NewWithRegistry(reg),
		HealthChecks: checks,
	})
}

func TestRouter_PublicAndOfficerRoutes(t *testing.T) {
	routes := &stubRoutes{}
	router := newTestRouter(routes, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/verify/07357BBCAFEF", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/records", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "officer-7", routes.officer)
}

func TestRouter_Operational(t *testing.T) {
	healthy := newTestRouter(&stubRoutes{}, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"up"`)

	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docverify_test_total")
	assert.Contains(t, rec.Body.String(), `docverify_http_requests_total{method="GET",route="/healthz",status="200"} 1`)

	degraded := newTestRouter(&stubRoutes{}, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	rec = httptest.NewRecorder()
	degraded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}
