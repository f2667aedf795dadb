// SPDX-License-Identifier: MIT

// Package api exposes the order lifecycle engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plantline/plantline/internal/api/middleware"
	"github.com/plantline/plantline/internal/audit"
	"github.com/plantline/plantline/internal/auth"
	"github.com/plantline/plantline/internal/board"
	"github.com/plantline/plantline/internal/config"
	"github.com/plantline/plantline/internal/health"
	"github.com/plantline/plantline/internal/log"
	"github.com/plantline/plantline/internal/orders"
	"github.com/plantline/plantline/internal/transition"
)

// Server holds the HTTP surface and its collaborators.
type Server struct {
	cfg    *config.Holder
	store  orders.Service
	exec   *transition.Executor
	boards *board.Service
	health *health.Manager
	audit  *audit.Logger
}

// NewServer wires the API over the given collaborators.
func NewServer(cfg *config.Holder, store orders.Service, exec *transition.Executor, boards *board.Service, healthMgr *health.Manager) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		exec:   exec,
		boards: boards,
		health: healthMgr,
		audit:  audit.NewLogger(),
	}
}

// Router builds the full route tree with the ingress middleware stack.
func (s *Server) Router() *chi.Mux {
	cfg := s.cfg.Get()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics())
	r.Use(middleware.Tracing("plantline-api"))
	r.Use(middleware.RequestLogger)

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, time.Minute, s.audit.RateLimitExceeded))
		r.Use(s.authMiddleware)

		r.Get("/lifecycle", s.handleLifecycle)
		r.Get("/board", s.handleBoard)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleListOrders)
			r.Post("/", s.handleCreateOrder)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetOrder)
				r.Get("/actions", s.handleActions)
				r.Get("/audit", s.handleAuditTrail)
				r.Post("/transition", s.handleTransition)
				r.Post("/hold", s.handleApplyHold)
				r.Delete("/hold", s.handleClearHold)
			})
		})
	})
	return r
}

// authMiddleware enforces the API token on every /api/v1 route. An empty
// configured token disables auth; the daemon warned about that at startup.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.Get().APIToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		got := auth.ExtractToken(r)
		if got == "" {
			s.audit.AuthMissing(clientAddr(r), r.URL.Path)
			writeUnauthorized(w)
			return
		}
		if !auth.AuthorizeToken(got, token) {
			s.audit.AuthFailure(clientAddr(r), r.URL.Path, "invalid token")
			writeUnauthorized(w)
			return
		}

		principal := auth.NewPrincipal(got, r.Header.Get(headerActingRole))
		s.audit.AuthSuccess(principal.ID, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(log.ContextWithActorRole(r.Context(), principal.Role)))
	})
}

func clientAddr(r *http.Request) string {
	return r.RemoteAddr
}
