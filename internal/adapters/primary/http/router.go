package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	mw "github.com/lorrc/helpdesk-core/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-core/internal/auth"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// MetricsExporter is the Prometheus side of the metrics recorder.
type MetricsExporter interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// RouterDeps holds everything the router mounts. Optional fields may be nil.
type RouterDeps struct {
	Logger         *slog.Logger
	TokenManager   *auth.TokenManager
	Callers        ports.CallerResolver
	Tickets        ports.TicketService
	Dashboard      ports.DashboardService
	Reports        ports.ReportService
	Health         *HealthHandler
	RateLimiter    *mw.RateLimiter
	Metrics        MetricsExporter
	MetricsPath    string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter builds the chi router serving the public API.
func NewRouter(deps RouterDeps) http.Handler {
	errorHandler := NewErrorHandler(deps.Logger)
	ticketHandler := NewTicketHandler(deps.Tickets, errorHandler, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Reports, errorHandler, deps.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(deps.Logger))
	r.Use(mw.RecoveryLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	if len(deps.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", mw.RequestIDHeader},
			ExposedHeaders:   []string{mw.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           int((5 * time.Minute).Seconds()),
		}))
	}
	if deps.MaxBodyBytes > 0 {
		r.Use(chimw.RequestSize(deps.MaxBodyBytes))
	}

	// Probe and scrape endpoints stay outside /api/v1 and need no token.
	if deps.Health != nil {
		deps.Health.RegisterRoutes(r)
	}
	if deps.Metrics != nil && deps.MetricsPath != "" {
		r.Method(http.MethodGet, deps.MetricsPath, deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Authenticate(deps.TokenManager, deps.Callers))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		r.Route("/tickets", ticketHandler.RegisterRoutes)
		dashboardHandler.RegisterRoutes(r)
	})

	return r
}
