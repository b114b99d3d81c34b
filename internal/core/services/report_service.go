package services

import (
	"context"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

// ReportService computes monthly and yearly rollups scoped by the
// assigned technician's team.
type ReportService struct {
	tickets ports.TicketRepository
	now     func() time.Time
}

var _ ports.ReportService = (*ReportService)(nil)

func NewReportService(tickets ports.TicketRepository, now func() time.Time) ports.ReportService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ReportService{tickets: tickets, now: now}
}

// ByAnalyst counts tickets closed in the period per technician.
func (s *ReportService) ByAnalyst(ctx context.Context, caller *domain.User, params ports.ReportParams) ([]domain.AnalystCount, error) {
	tickets, err := s.closedInPeriod(ctx, caller, params, query.HasTechnician{})
	if err != nil {
		return nil, err
	}
	return domain.CountByAnalyst(tickets), nil
}

// ByCategory averages resolution hours of tickets closed in the period.
func (s *ReportService) ByCategory(ctx context.Context, caller *domain.User, params ports.ReportParams) ([]domain.CategoryResolution, error) {
	tickets, err := s.closedInPeriod(ctx, caller, params, query.HasCategory{})
	if err != nil {
		return nil, err
	}
	return domain.AverageResolutionByCategory(tickets), nil
}

// ByMonth counts tickets opened in each month of the year.
func (s *ReportService) ByMonth(ctx context.Context, caller *domain.User, params ports.ReportParams) ([]domain.MonthCount, error) {
	scope, err := reportScope(caller, params.TeamID)
	if err != nil {
		return nil, err
	}
	period := s.period(params)

	p := query.Workload(scope)
	if p.IsNever() {
		return domain.CountByMonth(nil, period.Year, time.UTC), nil
	}

	from, to := domain.YearBounds(period.Year, time.UTC)
	tickets, err := s.tickets.Find(ctx, p.And(query.DateRange{Field: query.OpenedAt, From: from, To: to}))
	if err != nil {
		return nil, err
	}
	return domain.CountByMonth(tickets, period.Year, time.UTC), nil
}

func (s *ReportService) closedInPeriod(ctx context.Context, caller *domain.User, params ports.ReportParams, extra query.Clause) ([]*domain.Ticket, error) {
	scope, err := reportScope(caller, params.TeamID)
	if err != nil {
		return nil, err
	}

	p := query.Workload(scope)
	if p.IsNever() {
		return nil, nil
	}

	from, to := s.period(params).Bounds(time.UTC)
	return s.tickets.Find(ctx, p.And(extra, query.DateRange{Field: query.ClosedAt, From: from, To: to}))
}

// period fills in the current year and month for missing or out-of-range values.
func (s *ReportService) period(params ports.ReportParams) domain.ReportPeriod {
	now := s.now().UTC()
	period := domain.ReportPeriod{Year: params.Year, Month: params.Month}
	if period.Year <= 0 {
		period.Year = now.Year()
	}
	if period.Month < 1 || period.Month > 12 {
		period.Month = int(now.Month())
	}
	return period
}

// reportScope forces managers and technicians onto their own team; only
// admins choose.
func reportScope(caller *domain.User, teamID *int64) (domain.TeamScope, error) {
	if caller == nil {
		return domain.TeamScope{}, apperrors.ErrForbidden
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return domain.ParseTeamScope(teamID), nil
	case domain.RoleManager, domain.RoleTechnician:
		return domain.OwnTeamScope(caller), nil
	default:
		return domain.TeamScope{}, apperrors.ErrForbidden
	}
}
