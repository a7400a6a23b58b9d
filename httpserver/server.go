package httpserver

import (
	"context"
	"net/http"
	"time"

	"guesser/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

// RequestMetrics receives one measurement per handled request
type RequestMetrics interface {
	RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// Server bundles the router and the game service
type Server struct {
	r        *chi.Mux
	games    service.GameService
	identity *Identity
	metrics  RequestMetrics
}

// New constructs a Server, installs middleware and registers routes.
// metrics may be nil.
func New(games service.GameService, identity *Identity, metrics RequestMetrics) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		games:    games,
		identity: identity,
		metrics:  metrics,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.logRequests)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(requestTimeout))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/modes", s.handleModes)

	s.r.Group(func(r chi.Router) {
		r.Use(s.identity.Middleware)
		r.Post("/game/start", s.handleStart)
		r.Post("/game/guess", s.handleGuess)
		r.Post("/game/hint", s.handleHint)
		r.Get("/game", s.handleCurrent)
		r.Get("/games/mine", s.handleHistory)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "No route for " + r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: r.Method + " is not allowed on " + r.URL.Path})
	})

	return s
}

// Router exposes the handler for http.Server and tests
func (s *Server) Router() http.Handler { return s.r }

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// logRequests logs every request and feeds the request metrics
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		log.WithFields(log.Fields{
			"requestID": chimw.GetReqID(r.Context()),
			"method":    r.Method,
			"route":     route,
			"status":    status,
			"duration":  duration,
		}).Debug("Handled request")

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Context(), r.Method, route, status, duration)
		}
	})
}
