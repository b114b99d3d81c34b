package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

// maxCreateAttempts bounds retries after a ticket number collision.
const maxCreateAttempts = 3

// TicketServiceDeps collects the collaborators of TicketService.
type TicketServiceDeps struct {
	Tickets     ports.TicketRepository
	History     ports.HistoryRepository
	Attachments ports.AttachmentRepository
	Users       ports.UserRepository
	Catalog     ports.CatalogRepository
	Tx          ports.TransactionManager
	Lock        ports.CreationLock
	Metrics     ports.MetricsRecorder
	Logger      *slog.Logger
	Now         func() time.Time
}

// TicketService implements business logic for ticket management
type TicketService struct {
	tickets     ports.TicketRepository
	history     ports.HistoryRepository
	attachments ports.AttachmentRepository
	users       ports.UserRepository
	catalog     ports.CatalogRepository
	tx          ports.TransactionManager
	lock        ports.CreationLock
	sequencer   *Sequencer
	metrics     ports.MetricsRecorder
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(deps TicketServiceDeps) ports.TicketService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	lock := deps.Lock
	if lock == nil {
		lock = NewLocalCreationLock()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TicketService{
		tickets:     deps.Tickets,
		history:     deps.History,
		attachments: deps.Attachments,
		users:       deps.Users,
		catalog:     deps.Catalog,
		tx:          deps.Tx,
		lock:        lock,
		sequencer:   NewSequencer(deps.Tickets, now),
		metrics:     metrics,
		logger:      logger,
		now:         now,
	}
}

// ListTickets returns the tickets the caller may see, narrowed by filter.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, filter query.ListFilter) ([]domain.TicketView, error) {
	return s.find(ctx, query.Eligible(caller, filter))
}

// ListMyTickets returns the tickets the caller raised, whatever their role.
func (s *TicketService) ListMyTickets(ctx context.Context, caller *domain.User, status string) ([]domain.TicketView, error) {
	p := query.OwnedBy(caller)
	if c, ok := query.StatusClause(status); ok {
		p = p.And(c)
	}
	return s.find(ctx, p)
}

func (s *TicketService) find(ctx context.Context, p query.Predicate) ([]domain.TicketView, error) {
	if p.IsNever() {
		return []domain.TicketView{}, nil
	}
	tickets, err := s.tickets.Find(ctx, p)
	if err != nil {
		return nil, err
	}
	return domain.NewTicketViews(tickets), nil
}

// GetTicket retrieves a specific ticket with authorization
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID int64) (*domain.TicketView, error) {
	ticket, err := s.loadVisible(ctx, caller, ticketID)
	if err != nil {
		return nil, err
	}
	view := domain.NewTicketView(ticket)
	return &view, nil
}

// CreateTicket handles the use case for submitting a new ticket
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	if params.Requester == nil {
		return nil, apperrors.ErrRequesterRequired
	}

	category, err := s.category(ctx, params.CategoryID)
	if err != nil {
		return nil, err
	}
	var problem *domain.ProblemType
	if params.ProblemID != nil {
		if problem, err = s.catalog.GetProblem(ctx, *params.ProblemID); err != nil {
			return nil, err
		}
	}

	for _, file := range params.Attachments {
		if err := toAttachment(file).Validate(); err != nil {
			return nil, err
		}
	}

	ticketParams := domain.TicketParams{
		Description: params.Description,
		Requester:   params.Requester,
		Category:    category,
		Problem:     problem,
		Priority:    params.Priority,
	}

	for attempt := 1; ; attempt++ {
		ticket, err := domain.NewTicket(ticketParams, s.now())
		if err != nil {
			return nil, err
		}

		created, err := s.createOnce(ctx, ticket, params.Attachments)
		if err == nil {
			s.metrics.TicketCreated(created.Priority)
			s.logger.InfoContext(ctx, "ticket created",
				"ticket_id", created.ID,
				"number", created.Number,
				"priority", created.Priority,
			)
			return created, nil
		}
		if !errors.Is(err, apperrors.ErrConcurrencyConflict) {
			return nil, err
		}

		s.metrics.NumberConflict()
		if attempt >= maxCreateAttempts {
			s.logger.ErrorContext(ctx, "ticket number conflict persisted", "attempts", attempt)
			return nil, fmt.Errorf("creating ticket after %d attempts: %w", attempt, apperrors.ErrTransient)
		}
		s.logger.WarnContext(ctx, "ticket number conflict, retrying", "attempt", attempt)
	}
}

func (s *TicketService) createOnce(ctx context.Context, ticket *domain.Ticket, files []ports.NewAttachment) (*domain.Ticket, error) {
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring creation lock: %w", err)
	}
	defer release()

	var created *domain.Ticket
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		number, err := s.sequencer.Next(ctx)
		if err != nil {
			return err
		}
		ticket.Number = number

		created, err = s.tickets.Create(ctx, ticket)
		if err != nil {
			return err
		}
		if _, err := s.history.Append(ctx, created.Opened(created.OpenedAt)); err != nil {
			return err
		}

		for _, file := range files {
			entry, err := created.Attach(toAttachment(file), created.Requester, created.OpenedAt)
			if err != nil {
				return err
			}
			if err := s.persistAttachment(ctx, created, entry); err != nil {
				return err
			}
		}

		created, err = s.tickets.GetByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AssignSelf lets a staff member claim a ticket they can see.
func (s *TicketService) AssignSelf(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	if caller == nil || !caller.Role.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	return s.mutate(ctx, caller, ticketID, func(t *domain.Ticket, now time.Time) (domain.HistoryEntry, error) {
		return t.Assign(caller, caller, true, now)
	})
}

// AssignTo lets a manager or admin hand a ticket to a staff member.
func (s *TicketService) AssignTo(ctx context.Context, params ports.AssignTicketParams) (*domain.Ticket, error) {
	if params.Actor == nil || !params.Actor.Role.CanAssignOthers() {
		return nil, apperrors.ErrForbidden
	}

	technician, err := s.users.GetByID(ctx, params.TechnicianID)
	if err != nil {
		return nil, err
	}
	if !technician.Role.IsStaff() {
		return nil, apperrors.ErrInvalidAssignee
	}

	return s.mutate(ctx, params.Actor, params.TicketID, func(t *domain.Ticket, now time.Time) (domain.HistoryEntry, error) {
		return t.Assign(technician, params.Actor, false, now)
	})
}

// Classify updates a ticket's category and priority.
func (s *TicketService) Classify(ctx context.Context, params ports.ClassifyTicketParams) (*domain.Ticket, error) {
	if params.Actor == nil || !params.Actor.Role.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	category, err := s.category(ctx, params.CategoryID)
	if err != nil {
		return nil, err
	}
	priority, _ := domain.ParsePriority(params.Priority)

	return s.mutate(ctx, params.Actor, params.TicketID, func(t *domain.Ticket, now time.Time) (domain.HistoryEntry, error) {
		return t.Classify(category, priority, params.Actor, now), nil
	})
}

// Close records the solution and closes the ticket.
func (s *TicketService) Close(ctx context.Context, params ports.CloseTicketParams) (*domain.Ticket, error) {
	return s.mutate(ctx, params.Actor, params.TicketID, func(t *domain.Ticket, now time.Time) (domain.HistoryEntry, error) {
		return t.Close(params.Solution, params.Actor, now), nil
	})
}

// Reopen puts a ticket back in the queue.
func (s *TicketService) Reopen(ctx context.Context, params ports.ReopenTicketParams) (*domain.Ticket, error) {
	return s.mutate(ctx, params.Actor, params.TicketID, func(t *domain.Ticket, now time.Time) (domain.HistoryEntry, error) {
		return t.Reopen(params.Reason, params.Actor, now), nil
	})
}

// AddComment appends a comment to the ticket history.
func (s *TicketService) AddComment(ctx context.Context, params ports.CommentParams) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, params.Actor, params.TicketID)
	if err != nil {
		return nil, err
	}
	entry, err := ticket.Comment(params.Body, params.Actor, s.now())
	if err != nil {
		return nil, err
	}

	var updated *domain.Ticket
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.history.Append(ctx, entry); err != nil {
			return err
		}
		updated, err = s.tickets.GetByID(ctx, ticket.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TicketTransition(entry.Action)
	return updated, nil
}

// AddAttachment stores a file on the ticket.
func (s *TicketService) AddAttachment(ctx context.Context, params ports.AttachmentParams) (*domain.Ticket, error) {
	ticket, err := s.loadVisible(ctx, params.Actor, params.TicketID)
	if err != nil {
		return nil, err
	}
	entry, err := ticket.Attach(toAttachment(params.File), params.Actor, s.now())
	if err != nil {
		return nil, err
	}

	var updated *domain.Ticket
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.persistAttachment(ctx, ticket, entry); err != nil {
			return err
		}
		updated, err = s.tickets.GetByID(ctx, ticket.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TicketTransition(entry.Action)
	return updated, nil
}

// persistAttachment stores the attachment appended last and its history entry.
func (s *TicketService) persistAttachment(ctx context.Context, ticket *domain.Ticket, entry domain.HistoryEntry) error {
	attachment := ticket.Attachments[len(ticket.Attachments)-1]
	if _, err := s.attachments.Add(ctx, attachment); err != nil {
		return err
	}
	_, err := s.history.Append(ctx, entry)
	return err
}

type mutation func(t *domain.Ticket, now time.Time) (domain.HistoryEntry, error)

// mutate loads a visible ticket, applies fn, and persists the ticket and
// its history entry in one transaction.
func (s *TicketService) mutate(ctx context.Context, actor *domain.User, ticketID int64, fn mutation) (*domain.Ticket, error) {
	var (
		updated *domain.Ticket
		action  string
	)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.loadVisible(ctx, actor, ticketID)
		if err != nil {
			return err
		}

		entry, err := fn(ticket, s.now())
		if err != nil {
			return err
		}
		action = entry.Action

		if _, err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if _, err := s.history.Append(ctx, entry); err != nil {
			return err
		}

		updated, err = s.tickets.GetByID(ctx, ticketID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TicketTransition(action)
	s.logger.InfoContext(ctx, "ticket updated",
		"number", updated.Number,
		"action", action,
		"status", updated.Status,
	)
	return updated, nil
}

// loadVisible fetches a ticket and rejects callers outside its visibility.
func (s *TicketService) loadVisible(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.ErrForbidden
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !query.Visibility(caller).Match(ticket) {
		return nil, apperrors.ErrForbidden
	}
	return ticket, nil
}

func (s *TicketService) category(ctx context.Context, id *int64) (*domain.Category, error) {
	if id == nil {
		return nil, nil
	}
	return s.catalog.GetCategory(ctx, *id)
}

func toAttachment(file ports.NewAttachment) domain.Attachment {
	return domain.Attachment{
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Size:        int64(len(file.Content)),
		Content:     file.Content,
	}
}
