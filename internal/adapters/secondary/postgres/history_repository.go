package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// HistoryRepository stores the append-only audit trail of tickets.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

func NewHistoryRepository(pool *pgxpool.Pool) ports.HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (*domain.HistoryEntry, error) {
	const query = `
INSERT INTO ticket_history (ticket_id, action, comment, actor_id, occurred_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.Comment,
		userID(entry.Actor),
		entry.OccurredAt,
	).Scan(&entry.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("appending history: %w", err)
	}
	return &entry, nil
}

// ListByTicket returns the entries of a ticket, oldest first.
func (r *HistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	return listHistory(ctx, GetDBTX(ctx, r.pool), []int64{ticketID})
}

func listHistory(ctx context.Context, db DBTX, ticketIDs []int64) ([]domain.HistoryEntry, error) {
	const query = `
SELECT h.id, h.ticket_id, h.action, h.comment, h.occurred_at, ` + userColumns + `
FROM ticket_history h
LEFT JOIN users u ON u.id = h.actor_id
WHERE h.ticket_id = ANY($1)
ORDER BY h.occurred_at, h.id`

	rows, err := db.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var (
			h     domain.HistoryEntry
			actor userRow
		)
		dest := append([]any{&h.ID, &h.TicketID, &h.Action, &h.Comment, &h.OccurredAt}, actor.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		h.OccurredAt = h.OccurredAt.UTC()
		h.Actor = actor.toDomain()
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
