package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
)

// Match evaluates the predicate against a ticket in memory.
func (p Predicate) Match(t *domain.Ticket) bool {
	for _, c := range p.Clauses {
		if !Matches(c, t) {
			return false
		}
	}
	return true
}

// Filter returns the tickets matching the predicate, preserving order.
func (p Predicate) Filter(tickets []*domain.Ticket) []*domain.Ticket {
	out := make([]*domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if p.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Matches evaluates a single clause against a ticket.
func Matches(c Clause, t *domain.Ticket) bool {
	switch c := c.(type) {
	case RequesterLogin:
		return t.Requester.HasLogin(c.Login)
	case RequesterTeam:
		return t.Requester.InTeam(c.TeamID)
	case TechnicianLogin:
		return t.Technician.HasLogin(c.Login)
	case TechnicianTeam:
		return t.Technician.InTeam(c.TeamID)
	case Unassigned:
		return t.Technician == nil
	case HasTechnician:
		return t.Technician != nil
	case HasCategory:
		return t.Category != nil
	case StatusIn:
		for _, s := range c.Statuses {
			if t.Status == s {
				return true
			}
		}
		return false
	case Search:
		value, ok := searchValue(c.Field, t)
		return ok && strings.Contains(strings.ToLower(value), strings.ToLower(c.Term))
	case DateRange:
		return inRange(c, t)
	case CategoryIs:
		return t.Category != nil && t.Category.ID == c.ID
	case RequesterIs:
		return t.Requester != nil && t.Requester.ID == c.ID
	case TechnicianIs:
		return t.Technician != nil && t.Technician.ID == c.ID
	case Any:
		for _, inner := range c.Clauses {
			if Matches(inner, t) {
				return true
			}
		}
		return false
	case All:
		for _, inner := range c.Clauses {
			if !Matches(inner, t) {
				return false
			}
		}
		return true
	case Never:
		return false
	default:
		panic(fmt.Sprintf("query: unhandled clause %T", c))
	}
}

func searchValue(field SearchField, t *domain.Ticket) (string, bool) {
	switch field {
	case SearchNumber:
		return t.Number, true
	case SearchRequesterName:
		if t.Requester == nil {
			return "", false
		}
		return t.Requester.Name, true
	case SearchPriority:
		return string(t.Priority), true
	default:
		return t.Description, true
	}
}

func inRange(c DateRange, t *domain.Ticket) bool {
	if c.From.IsZero() && c.To.IsZero() {
		return true
	}

	var ts time.Time
	switch c.Field {
	case ClosedAt:
		if t.ClosedAt == nil {
			return false
		}
		ts = *t.ClosedAt
	default:
		ts = t.OpenedAt
	}

	if !c.From.IsZero() && ts.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && !ts.Before(c.To) {
		return false
	}
	return true
}
