package postgres

import (
	"testing"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClause(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		pred     query.Predicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty predicate",
			pred:    query.Predicate{},
			wantSQL: "",
		},
		{
			name:     "requester login",
			pred:     query.Where(query.RequesterLogin{Login: "Ana"}),
			wantSQL:  "WHERE LOWER(r.login) = LOWER($1)",
			wantArgs: []any{"Ana"},
		},
		{
			name:    "blank login never matches",
			pred:    query.Where(query.TechnicianLogin{Login: ""}),
			wantSQL: "WHERE FALSE",
		},
		{
			name: "technician visibility",
			pred: query.Where(query.Any{Clauses: []query.Clause{
				query.TechnicianLogin{Login: "tina"},
				query.All{Clauses: []query.Clause{
					query.StatusIn{Statuses: []domain.TicketStatus{domain.StatusOpen}},
					query.Unassigned{},
					query.RequesterTeam{TeamID: 7},
				}},
			}}),
			wantSQL:  "WHERE (LOWER(tech.login) = LOWER($1) OR (t.status = ANY($2) AND tech.id IS NULL AND r.team_id = $3))",
			wantArgs: []any{"tina", []string{"Aberto"}, int64(7)},
		},
		{
			name:    "empty any and all",
			pred:    query.Where(query.Any{}, query.All{}, query.Never{}),
			wantSQL: "WHERE FALSE AND TRUE AND FALSE",
		},
		{
			name:     "search escapes wildcards",
			pred:     query.Where(query.Search{Field: query.SearchNumber, Term: `50%_A\b`}),
			wantSQL:  `WHERE LOWER(t.number) LIKE $1 ESCAPE '\'`,
			wantArgs: []any{`%50\%\_a\\b%`},
		},
		{
			name:     "closed date range",
			pred:     query.Where(query.DateRange{Field: query.ClosedAt, From: from, To: to}),
			wantSQL:  "WHERE (t.closed_at >= $1 AND t.closed_at < $2)",
			wantArgs: []any{from, to},
		},
		{
			name:     "half open date range",
			pred:     query.Where(query.DateRange{Field: query.OpenedAt, To: to}),
			wantSQL:  "WHERE (t.opened_at < $1)",
			wantArgs: []any{to},
		},
		{
			name:    "unbounded date range",
			pred:    query.Where(query.DateRange{Field: query.ClosedAt}),
			wantSQL: "WHERE TRUE",
		},
		{
			name:     "ids",
			pred:     query.Where(query.CategoryIs{ID: 1}, query.RequesterIs{ID: 2}, query.TechnicianIs{ID: 3}, query.TechnicianTeam{TeamID: 4}),
			wantSQL:  "WHERE c.id = $1 AND r.id = $2 AND tech.id = $3 AND tech.team_id = $4",
			wantArgs: []any{int64(1), int64(2), int64(3), int64(4)},
		},
		{
			name:    "presence",
			pred:    query.Where(query.HasTechnician{}, query.HasCategory{}, query.StatusIn{}),
			wantSQL: "WHERE tech.id IS NOT NULL AND c.id IS NOT NULL AND FALSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := whereClause(tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

type unknownClause struct{ query.Clause }

func TestWhereClause_UnknownClause(t *testing.T) {
	_, _, err := whereClause(query.Where(unknownClause{}))
	assert.Error(t, err)
}
