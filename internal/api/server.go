// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/billing/purchase"
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/library/reader"
	"github.com/taibuivan/comicpass/internal/platform/config"
	"github.com/taibuivan/comicpass/internal/platform/constants"
	"github.com/taibuivan/comicpass/internal/platform/metrics"
	"github.com/taibuivan/comicpass/internal/platform/middleware"
	"github.com/taibuivan/comicpass/internal/users/account"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Account exposes balances, ledgers and operator credits.
	Account *account.Handler

	// Comic handles the catalogue.
	Comic *comic.Handler

	// Chapter handles chapter listing and admin authoring.
	Chapter *chapter.Handler

	// Entitlement handles favorites, progress and ownership lookups.
	Entitlement *entitlement.Handler

	// Reader serves chapter pages behind the access gate.
	Reader *reader.Handler

	// Order exposes the order ledger.
	Order *order.Handler

	// Purchase is the only route that spends coins.
	Purchase *purchase.Handler
}

// routeRegistrar is implemented by every domain handler.
type routeRegistrar interface {
	RegisterRoutes(api chi.Router)
}

func (h Handlers) registrars() []routeRegistrar {
	return []routeRegistrar{h.Account, h.Comic, h.Chapter, h.Entitlement, h.Reader, h.Order, h.Purchase}
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(metrics.InstrumentHandler)
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.NewRateLimiter(context, rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst).Handler)
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", metrics.Handler())

	// # Application API
	// Every domain registers its own member and admin groups.
	r.Route("/api/v1", func(api chi.Router) {
		for _, registrar := range h.registrars() {
			registrar.RegisterRoutes(api)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Router exposes the configured mux, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
