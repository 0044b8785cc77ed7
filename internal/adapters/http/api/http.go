// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/okian/salesdash/internal/adapters/repository"
	service "github.com/okian/salesdash/internal/app"
	"github.com/okian/salesdash/internal/domain/model"
)

const (
	defaultRateLimit = 120
	requestTimeout   = 60 * time.Second
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider

	// Current returns the latest scored period.
	Current(ctx context.Context) (*repository.Snapshot, error)

	// Rank returns one employee's ranking entry.
	Rank(ctx context.Context, name string) (repository.Entry, error)

	// Submit queues a refresh for the period.
	Submit(ctx context.Context, r model.DateRange, f model.Filters) (service.Job, error)

	// Job returns the state of a queued refresh.
	Job(ctx context.Context, id string) (service.Job, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	allowedOrigins []string
	ratePerMinute  int
	now            func() time.Time

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
	employeesHandler *EmployeesHandler
	exportHandler    *ExportHandler
	refreshHandler   *RefreshHandler
}

// Option configures the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithRateLimit caps requests per client IP per minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.ratePerMinute = perMinute
		}
	}
}

// WithClock replaces time.Now in export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		allowedOrigins: []string{"*"},
		ratePerMinute:  defaultRateLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.dashboardHandler = NewDashboardHandler(deps)
	s.employeesHandler = NewEmployeesHandler(deps)
	s.exportHandler = NewExportHandler(deps, s.now)
	s.refreshHandler = NewRefreshHandler(deps)
	return s
}

// Router returns the chi router with every route and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(s.ratePerMinute, time.Minute))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	r.Get("/employees", MetricsMiddleware(s.employeesHandler.HandleList, "employees"))
	r.Get("/employees/{name}", MetricsMiddleware(s.employeesHandler.HandleDetail, "employee"))
	r.Get("/export.csv", MetricsMiddleware(s.exportHandler.HandleCSV, "export_csv"))
	r.Get("/export.xlsx", MetricsMiddleware(s.exportHandler.HandleXLSX, "export_xlsx"))
	r.Post("/refresh", MetricsMiddleware(s.refreshHandler.HandleSubmit, "refresh"))
	r.Get("/refresh/{id}", MetricsMiddleware(s.refreshHandler.HandleStatus, "refresh_status"))
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a domain error onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrAuthentication):
		return http.StatusBadGateway, "auth_failed"
	case errors.Is(err, model.ErrExportTimeout):
		return http.StatusGatewayTimeout, "export_timeout"
	case errors.Is(err, model.ErrRemoteAPI):
		return http.StatusBadGateway, "remote_error"
	case errors.Is(err, model.ErrParse):
		return http.StatusBadGateway, "parse_failed"
	case errors.Is(err, model.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, repository.ErrNoSnapshot):
		return http.StatusServiceUnavailable, "no_snapshot"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrInvalidRange), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_started"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
