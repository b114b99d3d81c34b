package services

import (
	"context"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

// DashboardService computes the live dashboard over a team's workload.
type DashboardService struct {
	tickets ports.TicketRepository
	now     func() time.Time
}

var _ ports.DashboardService = (*DashboardService)(nil)

func NewDashboardService(tickets ports.TicketRepository, now func() time.Time) ports.DashboardService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DashboardService{tickets: tickets, now: now}
}

// Stats is limited to admins and managers. A manager is always scoped to
// their own team and sees an empty dashboard without one; an admin may
// pick any team or none.
func (s *DashboardService) Stats(ctx context.Context, caller *domain.User, teamID *int64) (*domain.DashboardStats, error) {
	var scope domain.TeamScope
	switch {
	case caller == nil:
		return nil, apperrors.ErrForbidden
	case caller.Role == domain.RoleAdmin:
		scope = domain.ParseTeamScope(teamID)
	case caller.Role == domain.RoleManager:
		scope = domain.OwnTeamScope(caller)
	default:
		return nil, apperrors.ErrForbidden
	}

	p := query.Workload(scope)
	if p.IsNever() {
		stats := domain.EmptyDashboard()
		return &stats, nil
	}

	tickets, err := s.tickets.Find(ctx, p)
	if err != nil {
		return nil, err
	}
	stats := domain.ComputeDashboard(tickets, s.now())
	return &stats, nil
}
