package query

import (
	"strings"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
)

// Visibility returns the base predicate for what the caller may see.
func Visibility(caller *domain.User) Predicate {
	if caller == nil {
		return Where(Never{})
	}

	switch caller.Role {
	case domain.RoleAdmin:
		return Predicate{}
	case domain.RoleManager:
		if !caller.HasTeam() {
			return Where(Never{})
		}
		return Where(RequesterTeam{TeamID: *caller.TeamID})
	case domain.RoleTechnician:
		queue := []Clause{StatusIn{Statuses: []domain.TicketStatus{domain.StatusOpen}}, Unassigned{}}
		if caller.HasTeam() {
			queue = append(queue, RequesterTeam{TeamID: *caller.TeamID})
		}
		return Where(Any{Clauses: []Clause{
			loginClause(caller.Login, func(l string) Clause { return TechnicianLogin{Login: l} }),
			All{Clauses: queue},
		}})
	default:
		return Where(loginClause(caller.Login, func(l string) Clause { return RequesterLogin{Login: l} }))
	}
}

// OwnedBy returns the predicate for tickets the caller raised, whatever
// their role.
func OwnedBy(caller *domain.User) Predicate {
	if caller == nil {
		return Where(Never{})
	}
	return Where(loginClause(caller.Login, func(l string) Clause { return RequesterLogin{Login: l} }))
}

func loginClause(login string, build func(string) Clause) Clause {
	if strings.TrimSpace(login) == "" {
		return Never{}
	}
	return build(login)
}

// ListFilter holds the optional list filters. Empty values impose no
// constraint; unrecognized enum values fall back to their default.
type ListFilter struct {
	SearchType   string
	Term         string
	DateField    string
	From         *time.Time
	To           *time.Time
	Status       string
	CategoryID   *int64
	RequesterID  *int64
	TechnicianID *int64
	TeamID       *int64
}

// Eligible combines the caller's visibility with the list filters.
func Eligible(caller *domain.User, f ListFilter) Predicate {
	p := Visibility(caller)
	if p.IsNever() {
		return p
	}

	if term := strings.TrimSpace(f.Term); term != "" {
		p = p.And(Search{Field: ParseSearchField(f.SearchType), Term: term})
	}
	if f.From != nil || f.To != nil {
		p = p.And(DayRange(ParseDateField(f.DateField), f.From, f.To))
	}
	if c, ok := StatusClause(f.Status); ok {
		p = p.And(c)
	}
	if f.CategoryID != nil {
		p = p.And(CategoryIs{ID: *f.CategoryID})
	}

	// Plain users are always scoped to themselves.
	if caller.Role != domain.RoleUser {
		if f.RequesterID != nil {
			p = p.And(RequesterIs{ID: *f.RequesterID})
		}
		if f.TechnicianID != nil {
			p = p.And(TechnicianIs{ID: *f.TechnicianID})
		}
	}

	if caller.Role == domain.RoleAdmin && f.TeamID != nil {
		scope := domain.ParseTeamScope(f.TeamID)
		if scope.IsNone() {
			return Where(Never{})
		}
		if id, ok := scope.TeamID(); ok {
			p = p.And(RequesterTeam{TeamID: id})
		}
	}

	return p
}

// Workload scopes aggregates by the assigned technician's team. It answers
// "whose workload", unlike list filters which scope by the requester.
func Workload(scope domain.TeamScope) Predicate {
	if scope.IsNone() {
		return Where(Never{})
	}
	if id, ok := scope.TeamID(); ok {
		return Where(TechnicianTeam{TeamID: id})
	}
	return Predicate{}
}

var searchFields = map[string]SearchField{
	"numero":      SearchNumber,
	"chamado":     SearchNumber,
	"number":      SearchNumber,
	"ticket":      SearchNumber,
	"solicitante": SearchRequesterName,
	"requester":   SearchRequesterName,
	"prioridade":  SearchPriority,
	"priority":    SearchPriority,
	"descricao":   SearchDescription,
	"description": SearchDescription,
}

// ParseSearchField maps a search type; the default is the description.
func ParseSearchField(raw string) SearchField {
	if field, ok := searchFields[domain.Fold(raw)]; ok {
		return field
	}
	return SearchDescription
}

// ParseDateField maps a date filter type; the default is the open time.
func ParseDateField(raw string) DateField {
	switch domain.Fold(raw) {
	case "fechamento", "closed", "close", "closedat":
		return ClosedAt
	}
	return OpenedAt
}

// DayRange converts inclusive calendar days into a half-open range. Either
// bound may be nil.
func DayRange(field DateField, from, to *time.Time) DateRange {
	r := DateRange{Field: field}
	if from != nil {
		r.From = startOfDay(*from)
	}
	if to != nil {
		r.To = startOfDay(*to).AddDate(0, 0, 1)
	}
	return r
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StatusClause maps a status filter. "todos"/"all", empty and unknown
// values impose nothing; any closed-family name matches the whole family.
func StatusClause(raw string) (Clause, bool) {
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return nil, false
	}
	if status.IsClosed() {
		family := make([]domain.TicketStatus, len(domain.ClosedFamily))
		copy(family, domain.ClosedFamily)
		return StatusIn{Statuses: family}, true
	}
	return StatusIn{Statuses: []domain.TicketStatus{status}}, true
}
