package ports

import (
	"context"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

// NewAttachment is an uploaded file.
type NewAttachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// CreateTicketParams defines the input for raising a new ticket.
type CreateTicketParams struct {
	Requester   *domain.User
	Description string
	CategoryID  *int64
	ProblemID   *int64
	Priority    string
	Attachments []NewAttachment
}

// AssignTicketParams defines the input for assigning a ticket to someone else.
type AssignTicketParams struct {
	TicketID     int64
	TechnicianID int64
	Actor        *domain.User
}

// ClassifyTicketParams defines the input for classifying a ticket.
type ClassifyTicketParams struct {
	TicketID   int64
	CategoryID *int64
	Priority   string
	Actor      *domain.User
}

// CloseTicketParams defines the input for closing a ticket.
type CloseTicketParams struct {
	TicketID int64
	Solution string
	Actor    *domain.User
}

// ReopenTicketParams defines the input for reopening a ticket.
type ReopenTicketParams struct {
	TicketID int64
	Reason   string
	Actor    *domain.User
}

// CommentParams defines the input for commenting on a ticket.
type CommentParams struct {
	TicketID int64
	Body     string
	Actor    *domain.User
}

// AttachmentParams defines the input for adding a file to a ticket.
type AttachmentParams struct {
	TicketID int64
	File     NewAttachment
	Actor    *domain.User
}

// ReportParams selects the period and team of a report. Zero values
// default to the current year and month.
type ReportParams struct {
	Year   int
	Month  int
	TeamID *int64
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	ListTickets(ctx context.Context, caller *domain.User, filter query.ListFilter) ([]domain.TicketView, error)
	ListMyTickets(ctx context.Context, caller *domain.User, status string) ([]domain.TicketView, error)
	GetTicket(ctx context.Context, caller *domain.User, ticketID int64) (*domain.TicketView, error)
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	AssignSelf(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error)
	AssignTo(ctx context.Context, params AssignTicketParams) (*domain.Ticket, error)
	Classify(ctx context.Context, params ClassifyTicketParams) (*domain.Ticket, error)
	Close(ctx context.Context, params CloseTicketParams) (*domain.Ticket, error)
	Reopen(ctx context.Context, params ReopenTicketParams) (*domain.Ticket, error)
	AddComment(ctx context.Context, params CommentParams) (*domain.Ticket, error)
	AddAttachment(ctx context.Context, params AttachmentParams) (*domain.Ticket, error)
}

// DashboardService computes the live dashboard.
type DashboardService interface {
	Stats(ctx context.Context, caller *domain.User, teamID *int64) (*domain.DashboardStats, error)
}

// ReportService computes period rollups.
type ReportService interface {
	ByAnalyst(ctx context.Context, caller *domain.User, params ReportParams) ([]domain.AnalystCount, error)
	ByCategory(ctx context.Context, caller *domain.User, params ReportParams) ([]domain.CategoryResolution, error)
	ByMonth(ctx context.Context, caller *domain.User, params ReportParams) ([]domain.MonthCount, error)
}

// CallerResolver turns an authenticated identity into a directory user.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, userID int64, login string) (*domain.User, error)
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreationLock serializes ticket creation. The returned release func must
// be called exactly once.
type CreationLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// MetricsRecorder receives domain events for instrumentation.
type MetricsRecorder interface {
	TicketCreated(priority domain.TicketPriority)
	TicketTransition(action string)
	NumberConflict()
}

// NoopMetrics is a recorder that does nothing. Used when metrics are disabled.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

func (NoopMetrics) TicketCreated(domain.TicketPriority) {}
func (NoopMetrics) TicketTransition(string)             {}
func (NoopMetrics) NumberConflict()                     {}
