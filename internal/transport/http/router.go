// Package httptransport assembles the chi router: shared middleware, the
// public verification routes, officer-only administration and operational
// endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docverify/internal/platform/metrics"
	"docverify/internal/platform/middleware"
	"docverify/pkg/platform/httputil"
	"docverify/pkg/platform/middleware/auth"
	"docverify/pkg/platform/middleware/metadata"
	"docverify/pkg/platform/middleware/requesttime"
)

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// VerificationRoutes splits public routes from officer-only ones.
type VerificationRoutes interface {
	Registrar
	RegisterOfficer(r chi.Router)
}

type Deps struct {
	Logger       *slog.Logger
	Verification VerificationRoutes
	APIKeys      Registrar
	OfficerAuth  auth.JWTValidator
	Gatherer     prometheus.Gatherer
	HTTPMetrics  *metrics.Metrics
	HealthChecks map[string]HealthCheck
	// TrustedProxies may set the client IP through forwarding headers.
	TrustedProxies []netip.Prefix
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(d.TrustedProxies))
	r.Use(middleware.Logger(logger))
	if d.HTTPMetrics != nil {
		r.Use(middleware.Metrics(d.HTTPMetrics))
	}

	r.Get("/healthz", healthHandler(d.HealthChecks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	d.Verification.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireOfficer(d.OfficerAuth, logger))
		d.Verification.RegisterOfficer(r)
		if d.APIKeys != nil {
			d.APIKeys.Register(r)
		}
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "up"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": results})
	}
}
