package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cyberguard-portal/api/handlers"
)

type routeHandlers struct {
	submit    *handlers.SubmitHandler
	dashboard *handlers.DashboardHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		submit:    handlers.NewSubmitHandler(s.submission, s.reports, s.db, s.clientIP, s.logger),
		dashboard: handlers.NewDashboardHandler(s.dashboard, s.db, s.logger),
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	h := s.newRouteHandlers()

	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.jsonMiddleware)

	// The submission endpoint dispatches on method itself so that
	// unsupported methods get the structured 405 payload.
	r.HandleFunc("/api/reports", h.submit.Serve)
	r.Get("/api/dashboard", h.dashboard.Serve)

	return r
}
