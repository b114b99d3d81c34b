package ports

import (
	"context"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

// TicketRepository is the ticket store.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	// GetByID loads the ticket with its attachment metadata and history.
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// Update persists the ticket's mutable fields. History and
	// attachments are written through their own repositories.
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	// Find returns the tickets matching the predicate, newest first.
	Find(ctx context.Context, p query.Predicate) ([]*domain.Ticket, error)
	// HighestSequence returns the largest numeric sequence among ticket
	// numbers starting with prefix, or 0 when there is none.
	HighestSequence(ctx context.Context, prefix string) (int, error)
}

// HistoryRepository is the append-only audit sink.
type HistoryRepository interface {
	Append(ctx context.Context, entry domain.HistoryEntry) (*domain.HistoryEntry, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error)
}

// AttachmentRepository stores ticket attachments.
type AttachmentRepository interface {
	Add(ctx context.Context, attachment domain.Attachment) (*domain.Attachment, error)
}

// UserRepository is the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
}

// CatalogRepository resolves category and problem type references.
type CatalogRepository interface {
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	GetProblem(ctx context.Context, id int64) (*domain.ProblemType, error)
}
