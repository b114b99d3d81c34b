package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/lorrc/helpdesk-core/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-core/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// DashboardHandler serves the live dashboard and the period reports.
type DashboardHandler struct {
	dashboard    ports.DashboardService
	reports      ports.ReportService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewDashboardHandler(
	dashboard ports.DashboardService,
	reports ports.ReportService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboard:    dashboard,
		reports:      reports,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "dashboard"),
	}
}

// RegisterRoutes mounts /dashboard and /reports on r.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.HandleDashboard)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/analysts", h.HandleByAnalyst)
		r.Get("/categories", h.HandleByCategory)
		r.Get("/monthly", h.HandleByMonth)
	})
}

// HandleDashboard handles GET /dashboard?teamId=
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := validation.NewQueryParser(r)
	teamID := q.Int64("teamId")
	if HandleError(w, r, q.Err(), h.errorHandler) {
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), caller, teamID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

// HandleByAnalyst handles GET /reports/analysts?year=&month=&teamId=
func (h *DashboardHandler) HandleByAnalyst(w http.ResponseWriter, r *http.Request) {
	caller, params, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	rows, err := h.reports.ByAnalyst(r.Context(), caller, params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, rows)
}

// HandleByCategory handles GET /reports/categories?year=&month=&teamId=
func (h *DashboardHandler) HandleByCategory(w http.ResponseWriter, r *http.Request) {
	caller, params, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	rows, err := h.reports.ByCategory(r.Context(), caller, params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, rows)
}

// HandleByMonth handles GET /reports/monthly?year=&teamId=
func (h *DashboardHandler) HandleByMonth(w http.ResponseWriter, r *http.Request) {
	caller, params, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	rows, err := h.reports.ByMonth(r.Context(), caller, params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteList(w, rows)
}

func (h *DashboardHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	caller, ok := mw.CallerFromContext(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return nil, false
	}
	return caller, true
}

// reportParams parses year, month and teamId. Zero year or month means the
// current one.
func (h *DashboardHandler) reportParams(w http.ResponseWriter, r *http.Request) (*domain.User, ports.ReportParams, bool) {
	caller, ok := h.caller(w, r)
	if !ok {
		return nil, ports.ReportParams{}, false
	}

	q := validation.NewQueryParser(r)
	params := ports.ReportParams{
		Year:   q.Int("year", 0),
		Month:  q.Int("month", 0),
		TeamID: q.Int64("teamId"),
	}
	v := q.Validator()
	if params.Year != 0 {
		v.Range("year", params.Year, 1970, 9999)
	}
	if params.Month != 0 {
		v.Range("month", params.Month, 1, 12)
	}
	if HandleError(w, r, q.Err(), h.errorHandler) {
		return nil, ports.ReportParams{}, false
	}

	return caller, params, true
}
