package postgres

import (
	"fmt"
	"strings"

	"github.com/lorrc/helpdesk-core/internal/core/query"
)

// The translated SQL refers to these aliases, set up by ticketFrom.
const ticketFrom = `
FROM tickets t
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN problem_types p ON p.id = t.problem_id
LEFT JOIN users r ON r.id = t.requester_id
LEFT JOIN users tech ON tech.id = t.technician_id`

// sqlBuilder renders predicate clauses into positional SQL.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// whereClause renders p as a WHERE clause. The zero predicate renders as "".
func whereClause(p query.Predicate) (string, []any, error) {
	if len(p.Clauses) == 0 {
		return "", nil, nil
	}
	b := &sqlBuilder{}
	sql, err := b.join(p.Clauses, " AND ")
	if err != nil {
		return "", nil, err
	}
	return "WHERE " + sql, b.args, nil
}

func (b *sqlBuilder) join(clauses []query.Clause, sep string) (string, error) {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		sql, err := b.clause(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, sep), nil
}

func (b *sqlBuilder) clause(c query.Clause) (string, error) {
	switch c := c.(type) {
	case query.RequesterLogin:
		return b.loginEquals("r.login", c.Login), nil
	case query.RequesterTeam:
		return "r.team_id = " + b.arg(c.TeamID), nil
	case query.TechnicianLogin:
		return b.loginEquals("tech.login", c.Login), nil
	case query.TechnicianTeam:
		return "tech.team_id = " + b.arg(c.TeamID), nil
	case query.Unassigned:
		return "tech.id IS NULL", nil
	case query.HasTechnician:
		return "tech.id IS NOT NULL", nil
	case query.HasCategory:
		return "c.id IS NOT NULL", nil
	case query.StatusIn:
		if len(c.Statuses) == 0 {
			return "FALSE", nil
		}
		statuses := make([]string, 0, len(c.Statuses))
		for _, s := range c.Statuses {
			statuses = append(statuses, string(s))
		}
		return "t.status = ANY(" + b.arg(statuses) + ")", nil
	case query.Search:
		pattern := "%" + escapeLike(strings.ToLower(c.Term)) + "%"
		return "LOWER(" + searchColumn(c.Field) + ") LIKE " + b.arg(pattern) + ` ESCAPE '\'`, nil
	case query.DateRange:
		return b.dateRange(c), nil
	case query.CategoryIs:
		return "c.id = " + b.arg(c.ID), nil
	case query.RequesterIs:
		return "r.id = " + b.arg(c.ID), nil
	case query.TechnicianIs:
		return "tech.id = " + b.arg(c.ID), nil
	case query.Any:
		if len(c.Clauses) == 0 {
			return "FALSE", nil
		}
		sql, err := b.join(c.Clauses, " OR ")
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	case query.All:
		if len(c.Clauses) == 0 {
			return "TRUE", nil
		}
		sql, err := b.join(c.Clauses, " AND ")
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	case query.Never:
		return "FALSE", nil
	default:
		return "", fmt.Errorf("postgres: unsupported clause %T", c)
	}
}

// loginEquals never matches a blank login, mirroring User.HasLogin.
func (b *sqlBuilder) loginEquals(column, login string) string {
	if login == "" {
		return "FALSE"
	}
	return "LOWER(" + column + ") = LOWER(" + b.arg(login) + ")"
}

func (b *sqlBuilder) dateRange(c query.DateRange) string {
	if c.From.IsZero() && c.To.IsZero() {
		return "TRUE"
	}
	column := "t.opened_at"
	if c.Field == query.ClosedAt {
		column = "t.closed_at"
	}

	parts := make([]string, 0, 2)
	if !c.From.IsZero() {
		parts = append(parts, column+" >= "+b.arg(c.From))
	}
	if !c.To.IsZero() {
		parts = append(parts, column+" < "+b.arg(c.To))
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func searchColumn(field query.SearchField) string {
	switch field {
	case query.SearchNumber:
		return "t.number"
	case query.SearchRequesterName:
		return "r.name"
	case query.SearchPriority:
		return "t.priority"
	default:
		return "t.description"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes every character of a search term literal in LIKE.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
