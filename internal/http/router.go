// Package httpapi assembles the HTTP surface: the public petition and
// signature endpoints, the authenticated admin endpoints and the operational
// probes. Handlers delegate to domain services; no business logic lives here.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "petities/internal/admin/handler"
	petitionhandler "petities/internal/petition/handler"
	platformmetrics "petities/internal/platform/metrics"
	"petities/internal/platform/middleware"
	signaturehandler "petities/internal/signature/handler"
	"petities/pkg/platform/httputil"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Logger     *slog.Logger
	Petitions  *petitionhandler.Handler
	Signatures *signaturehandler.Handler
	Admin      *adminhandler.Handler
	AdminAuth  middleware.AdminValidator

	// HTTPMetrics is optional; when nil no per-request metrics are recorded.
	HTTPMetrics *platformmetrics.HTTP

	// Readiness holds named dependency probes for /readyz. A failing probe
	// flips readiness, it never affects liveness.
	Readiness map[string]func(context.Context) error
}

// NewRouter wires all endpoints and the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	if d.HTTPMetrics != nil {
		r.Use(d.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(d.Readiness))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Petitions.Register(r)
		d.Signatures.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(d.AdminAuth, d.Logger))
		d.Admin.Register(r)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReadyz(probes map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(probes))
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		httputil.WriteJSON(w, status, results)
	}
}
