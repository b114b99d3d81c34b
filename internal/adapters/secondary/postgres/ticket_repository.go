package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

const ticketColumns = `
SELECT t.id, t.number, t.description, t.status, t.priority,
       t.opened_at, t.closed_at, t.solution, t.reopened,
       c.id, c.name,
       p.id, p.name, p.default_priority,
       r.id, r.name, r.login, r.email, r.role, r.team_id,
       tech.id, tech.name, tech.login, tech.email, tech.role, tech.team_id`

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

// Create inserts the ticket. A duplicate number surfaces as
// ErrConcurrencyConflict so the caller can draw a new one.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
INSERT INTO tickets (number, description, status, priority, category_id, problem_id,
                     requester_id, technician_id, opened_at, closed_at, solution, reopened)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`

	var id int64
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		ticket.Number,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		categoryID(ticket.Category),
		problemID(ticket.Problem),
		userID(ticket.Requester),
		userID(ticket.Technician),
		ticket.OpenedAt,
		ticket.ClosedAt,
		ticket.Solution,
		ticket.Reopened,
	).Scan(&id)
	if err != nil {
		return nil, mapError(err, apperrors.ErrTicketNotFound)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a single ticket with its attachments and history.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := ticketColumns + ticketFrom + ` WHERE t.id = $1`

	ticket, err := scanTicket(GetDBTX(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrTicketNotFound)
	}
	if err := r.hydrate(ctx, []*domain.Ticket{ticket}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Update persists the mutable fields. Number and open time never change.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
UPDATE tickets
SET description = $2, status = $3, priority = $4, category_id = $5, problem_id = $6,
    technician_id = $7, closed_at = $8, solution = $9, reopened = $10
WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		ticket.ID,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		categoryID(ticket.Category),
		problemID(ticket.Problem),
		userID(ticket.Technician),
		ticket.ClosedAt,
		ticket.Solution,
		ticket.Reopened,
	)
	if err != nil {
		return nil, mapError(err, apperrors.ErrTicketNotFound)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrTicketNotFound
	}
	return r.GetByID(ctx, ticket.ID)
}

// Find returns the tickets matching p, newest first.
func (r *TicketRepository) Find(ctx context.Context, p query.Predicate) ([]*domain.Ticket, error) {
	where, args, err := whereClause(p)
	if err != nil {
		return nil, err
	}
	sql := ticketColumns + ticketFrom + "\n" + where + "\nORDER BY t.id DESC"

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// HighestSequence returns the largest numeric suffix among numbers with
// the prefix, or 0. Suffixes that are not all digits are ignored.
func (r *TicketRepository) HighestSequence(ctx context.Context, prefix string) (int, error) {
	const query = `
SELECT COALESCE(MAX(CAST(substr(number, length($1::text) + 1) AS INTEGER)), 0)
FROM tickets
WHERE starts_with(number, $1::text)
  AND substr(number, length($1::text) + 1) ~ '^[0-9]{1,9}$'`

	var highest int
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, prefix).Scan(&highest); err != nil {
		return 0, fmt.Errorf("reading highest sequence: %w", err)
	}
	return highest, nil
}

// hydrate batch-loads history and attachment summaries for the tickets.
func (r *TicketRepository) hydrate(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(tickets))
	byID := make(map[int64]*domain.Ticket, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
		byID[t.ID] = t
		t.History = []domain.HistoryEntry{}
		t.Attachments = []domain.Attachment{}
	}

	db := GetDBTX(ctx, r.pool)

	history, err := listHistory(ctx, db, ids)
	if err != nil {
		return err
	}
	for _, h := range history {
		if t, ok := byID[h.TicketID]; ok {
			t.History = append(t.History, h)
		}
	}

	attachments, err := listAttachments(ctx, db, ids)
	if err != nil {
		return err
	}
	for _, a := range attachments {
		if t, ok := byID[a.TicketID]; ok {
			t.Attachments = append(t.Attachments, a)
		}
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t           domain.Ticket
		status      string
		priority    string
		closedAt    *time.Time
		catID       *int64
		catName     *string
		probID      *int64
		probName    *string
		probDefault *string
		requester   userRow
		technician  userRow
	)

	dest := []any{
		&t.ID, &t.Number, &t.Description, &status, &priority,
		&t.OpenedAt, &closedAt, &t.Solution, &t.Reopened,
		&catID, &catName,
		&probID, &probName, &probDefault,
	}
	dest = append(dest, requester.dest()...)
	dest = append(dest, technician.dest()...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	t.Status = domain.TicketStatus(status)
	t.Priority = domain.TicketPriority(priority)
	t.OpenedAt = t.OpenedAt.UTC()
	if closedAt != nil {
		utc := closedAt.UTC()
		t.ClosedAt = &utc
	}
	if catID != nil {
		t.Category = &domain.Category{ID: *catID, Name: deref(catName)}
	}
	if probID != nil {
		def, _ := domain.ParsePriority(deref(probDefault))
		t.Problem = &domain.ProblemType{ID: *probID, Name: deref(probName), DefaultPriority: def}
	}
	t.Requester = requester.toDomain()
	t.Technician = technician.toDomain()
	return &t, nil
}

func categoryID(c *domain.Category) *int64 {
	if c == nil {
		return nil
	}
	return &c.ID
}

func problemID(p *domain.ProblemType) *int64 {
	if p == nil {
		return nil
	}
	return &p.ID
}

func userID(u *domain.User) *int64 {
	if u == nil {
		return nil
	}
	return &u.ID
}
