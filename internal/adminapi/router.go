// Package adminapi is the naming server's read-only/administrative HTTP
// API: liveness/readiness probes, Prometheus metrics, SS/user/registry
// introspection mirroring the wire protocol's LIST_SS/LIST_USERS ops, a
// read-only access-control audit log, a JSON Schema for the config file,
// and a guarded shutdown trigger. It is entirely separate from the
// client/SS wire protocol and binds its own port; cmd/nsctl talks to it
// exclusively.
package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/naming-server/internal/audit"
	"github.com/marmos91/naming-server/internal/logger"
	"github.com/marmos91/naming-server/internal/metadata"
	"github.com/marmos91/naming-server/internal/metrics"
)

// API holds the dependencies the admin HTTP handlers need.
type API struct {
	store    *metadata.Store
	ready    func() bool
	shutdown func()
	audit    *audit.Log
}

// New builds an API. ready reports whether the wire listener is bound;
// shutdown is invoked (in a new goroutine) by POST /shutdown. log may be nil,
// in which case GET /audit always reports an empty list.
func New(store *metadata.Store, ready func() bool, shutdown func(), log *audit.Log) *API {
	return &API{store: store, ready: ready, shutdown: shutdown, audit: log}
}

// Router builds the chi router for the admin API, following the teacher's
// own control-plane router's middleware stack and request-logging shape.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReadyz)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/ss", a.handleListSS)
	r.Get("/users", a.handleListUsers)
	r.Get("/registry", a.handleRegistryDump)
	r.Get("/audit", a.handleAuditLog)
	r.Get("/config/schema", a.handleConfigSchema)
	r.Post("/shutdown", a.handleShutdown)

	return r
}

// requestLogger logs each admin API request, mirroring the teacher's own
// control-plane requestLogger but using this repo's internal/logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug("admin API request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
