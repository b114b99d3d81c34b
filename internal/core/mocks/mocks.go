package mocks

import (
	"context"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
	"github.com/stretchr/testify/mock"
)

// MockTicketRepository is a mock implementation of ports.TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{}
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Find(ctx context.Context, p query.Predicate) ([]*domain.Ticket, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) HighestSequence(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

// MockHistoryRepository is a mock implementation of ports.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (*domain.HistoryEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// MockAttachmentRepository is a mock implementation of ports.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

func NewMockAttachmentRepository() *MockAttachmentRepository {
	return &MockAttachmentRepository{}
}

func (m *MockAttachmentRepository) Add(ctx context.Context, attachment domain.Attachment) (*domain.Attachment, error) {
	args := m.Called(ctx, attachment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockCatalogRepository is a mock implementation of ports.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{}
}

func (m *MockCatalogRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCatalogRepository) GetProblem(ctx context.Context, id int64) (*domain.ProblemType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProblemType), args.Error(1)
}

// MockTransactionManager records the call and, unless told to fail, runs fn.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockMetricsRecorder is a mock implementation of ports.MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

func NewMockMetricsRecorder() *MockMetricsRecorder {
	return &MockMetricsRecorder{}
}

func (m *MockMetricsRecorder) TicketCreated(priority domain.TicketPriority) {
	m.Called(priority)
}

func (m *MockMetricsRecorder) TicketTransition(action string) {
	m.Called(action)
}

func (m *MockMetricsRecorder) NumberConflict() {
	m.Called()
}

// MockTicketService is a mock implementation of ports.TicketService
type MockTicketService struct {
	mock.Mock
}

func NewMockTicketService() *MockTicketService {
	return &MockTicketService{}
}

func (m *MockTicketService) ListTickets(ctx context.Context, caller *domain.User, filter query.ListFilter) ([]domain.TicketView, error) {
	args := m.Called(ctx, caller, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketView), args.Error(1)
}

func (m *MockTicketService) ListMyTickets(ctx context.Context, caller *domain.User, status string) ([]domain.TicketView, error) {
	args := m.Called(ctx, caller, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketView), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID int64) (*domain.TicketView, error) {
	args := m.Called(ctx, caller, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketView), args.Error(1)
}

func (m *MockTicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) AssignSelf(ctx context.Context, caller *domain.User, ticketID int64) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, caller, ticketID))
}

func (m *MockTicketService) AssignTo(ctx context.Context, params ports.AssignTicketParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) Classify(ctx context.Context, params ports.ClassifyTicketParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) Close(ctx context.Context, params ports.CloseTicketParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) Reopen(ctx context.Context, params ports.ReopenTicketParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) AddComment(ctx context.Context, params ports.CommentParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) AddAttachment(ctx context.Context, params ports.AttachmentParams) (*domain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, params))
}

func (m *MockTicketService) ticketResult(args mock.Arguments) (*domain.Ticket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

// MockDashboardService is a mock implementation of ports.DashboardService
type MockDashboardService struct {
	mock.Mock
}

func NewMockDashboardService() *MockDashboardService {
	return &MockDashboardService{}
}

func (m *MockDashboardService) Stats(ctx context.Context, caller *domain.User, teamID *int64) (*domain.DashboardStats, error) {
	args := m.Called(ctx, caller, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

// MockReportService is a mock implementation of ports.ReportService
type MockReportService struct {
	mock.Mock
}

func NewMockReportService() *MockReportService {
	return &MockReportService{}
}

func (m *MockReportService) ByAnalyst(ctx context.Context, caller *domain.User, params ports.ReportParams) ([]domain.AnalystCount, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AnalystCount), args.Error(1)
}

func (m *MockReportService) ByCategory(ctx context.Context, caller *domain.User, params ports.ReportParams) ([]domain.CategoryResolution, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryResolution), args.Error(1)
}

func (m *MockReportService) ByMonth(ctx context.Context, caller *domain.User, params ports.ReportParams) ([]domain.MonthCount, error) {
	args := m.Called(ctx, caller, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MonthCount), args.Error(1)
}

// MockCallerResolver is a mock implementation of ports.CallerResolver
type MockCallerResolver struct {
	mock.Mock
}

func NewMockCallerResolver() *MockCallerResolver {
	return &MockCallerResolver{}
}

func (m *MockCallerResolver) ResolveCaller(ctx context.Context, userID int64, login string) (*domain.User, error) {
	args := m.Called(ctx, userID, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
