// Package memory is an in-process implementation of the storage ports.
// It backs tests and single-node demos and evaluates predicates with the
// same Match logic the postgres translator mirrors.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
)

type state struct {
	nextTicketID     int64
	nextHistoryID    int64
	nextAttachmentID int64
	tickets          map[int64]domain.Ticket
	numbers          map[string]int64
	history          map[int64][]domain.HistoryEntry
	attachments      map[int64][]domain.Attachment
	users            map[int64]domain.User
	categories       map[int64]domain.Category
	problems         map[int64]domain.ProblemType
}

func newState() *state {
	return &state{
		tickets:     make(map[int64]domain.Ticket),
		numbers:     make(map[string]int64),
		history:     make(map[int64][]domain.HistoryEntry),
		attachments: make(map[int64][]domain.Attachment),
		users:       make(map[int64]domain.User),
		categories:  make(map[int64]domain.Category),
		problems:    make(map[int64]domain.ProblemType),
	}
}

func (s *state) clone() *state {
	c := *s
	c.tickets = make(map[int64]domain.Ticket, len(s.tickets))
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	c.numbers = make(map[string]int64, len(s.numbers))
	for k, v := range s.numbers {
		c.numbers[k] = v
	}
	c.history = make(map[int64][]domain.HistoryEntry, len(s.history))
	for k, v := range s.history {
		c.history[k] = append([]domain.HistoryEntry(nil), v...)
	}
	c.attachments = make(map[int64][]domain.Attachment, len(s.attachments))
	for k, v := range s.attachments {
		c.attachments[k] = append([]domain.Attachment(nil), v...)
	}
	c.users = make(map[int64]domain.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.categories = make(map[int64]domain.Category, len(s.categories))
	for k, v := range s.categories {
		c.categories[k] = v
	}
	c.problems = make(map[int64]domain.ProblemType, len(s.problems))
	for k, v := range s.problems {
		c.problems[k] = v
	}
	return &c
}

// Store holds all in-memory state. Transactions run one at a time against
// a private working copy: nothing outside sees their writes until commit,
// when the recorded writes are replayed onto the committed state. A
// rollback drops the working copy. Work outside a transaction, seeding
// included, goes straight to the committed state.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

// mutation is one recorded write. It carries every value it stores, ids
// included, so replaying it at commit reproduces the rows the transaction
// returned.
type mutation func(d *state) error

type tx struct {
	mu   sync.Mutex
	data *state
	log  []mutation
}

type txKey struct{}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

var _ ports.TransactionManager = (*Store)(nil)

// WithTransaction runs fn atomically. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	t := &tx{data: s.data.clone()}
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	return s.commit(t)
}

// commit replays the transaction's writes onto the latest committed state.
// A write that no longer applies, such as an id issued meanwhile outside
// the transaction, fails the whole commit and publishes nothing.
func (s *Store) commit(t *tx) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.log) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	for _, m := range t.log {
		if err := m(next); err != nil {
			return err
		}
	}
	s.data = next
	return nil
}

// view runs fn against the state ctx sees: the working copy inside a
// transaction, the committed state otherwise.
func (s *Store) view(ctx context.Context, fn func(d *state) error) error {
	if t := txFrom(ctx); t != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		return fn(t.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// write plans a mutation against the state ctx sees and applies it there.
// Inside a transaction the mutation is also kept for commit.
func (s *Store) write(ctx context.Context, plan func(d *state) (mutation, error)) error {
	t := txFrom(ctx)
	return s.view(ctx, func(d *state) error {
		m, err := plan(d)
		if err != nil {
			return err
		}
		if err := m(d); err != nil {
			return err
		}
		if t != nil {
			t.log = append(t.log, m)
		}
		return nil
	})
}

// AddUser seeds the user directory and returns the stored user.
func (s *Store) AddUser(u domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
	return &u
}

// AddCategory seeds a category.
func (s *Store) AddCategory(c domain.Category) *domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.categories[c.ID] = c
	return &c
}

// AddProblem seeds a problem type.
func (s *Store) AddProblem(p domain.ProblemType) *domain.ProblemType {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.problems[p.ID] = p
	return &p
}

func (s *Store) Tickets() *TicketRepository         { return &TicketRepository{s: s} }
func (s *Store) History() *HistoryRepository        { return &HistoryRepository{s: s} }
func (s *Store) Attachments() *AttachmentRepository { return &AttachmentRepository{s: s} }
func (s *Store) Users() *UserRepository             { return &UserRepository{s: s} }
func (s *Store) Catalog() *CatalogRepository        { return &CatalogRepository{s: s} }

// TicketRepository implements ports.TicketRepository.
type TicketRepository struct{ s *Store }

var _ ports.TicketRepository = (*TicketRepository)(nil)

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	var id int64
	err := r.s.write(ctx, func(d *state) (mutation, error) {
		if _, taken := d.numbers[ticket.Number]; taken {
			return nil, apperrors.ErrConcurrencyConflict
		}
		stored := strip(*ticket)
		stored.ID = d.nextTicketID + 1
		id = stored.ID
		return insertTicket(stored), nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := r.s.view(ctx, func(d *state) error {
		stored, ok := d.tickets[id]
		if !ok {
			return apperrors.ErrTicketNotFound
		}
		out = d.hydrate(stored)
		return nil
	})
	return out, err
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	err := r.s.write(ctx, func(d *state) (mutation, error) {
		if _, ok := d.tickets[ticket.ID]; !ok {
			return nil, apperrors.ErrTicketNotFound
		}
		return replaceTicket(strip(*ticket)), nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ticket.ID)
}

func (r *TicketRepository) Find(ctx context.Context, p query.Predicate) ([]*domain.Ticket, error) {
	out := make([]*domain.Ticket, 0)
	err := r.s.view(ctx, func(d *state) error {
		for _, stored := range d.tickets {
			t := d.hydrate(stored)
			if p.Match(t) {
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *TicketRepository) HighestSequence(ctx context.Context, prefix string) (int, error) {
	highest := 0
	err := r.s.view(ctx, func(d *state) error {
		for number := range d.numbers {
			if seq, ok := domain.ParseSequence(number, prefix); ok && seq > highest {
				highest = seq
			}
		}
		return nil
	})
	return highest, err
}

// HistoryRepository implements ports.HistoryRepository.
type HistoryRepository struct{ s *Store }

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (*domain.HistoryEntry, error) {
	err := r.s.write(ctx, func(d *state) (mutation, error) {
		if _, ok := d.tickets[entry.TicketID]; !ok {
			return nil, apperrors.ErrTicketNotFound
		}
		entry.ID = d.nextHistoryID + 1
		return appendHistory(entry), nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *HistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := r.s.view(ctx, func(d *state) error {
		out = append([]domain.HistoryEntry{}, d.history[ticketID]...)
		return nil
	})
	return out, err
}

// AttachmentRepository implements ports.AttachmentRepository.
type AttachmentRepository struct{ s *Store }

var _ ports.AttachmentRepository = (*AttachmentRepository)(nil)

func (r *AttachmentRepository) Add(ctx context.Context, attachment domain.Attachment) (*domain.Attachment, error) {
	attachment.Content = append([]byte(nil), attachment.Content...)
	err := r.s.write(ctx, func(d *state) (mutation, error) {
		if _, ok := d.tickets[attachment.TicketID]; !ok {
			return nil, apperrors.ErrTicketNotFound
		}
		attachment.ID = d.nextAttachmentID + 1
		return addAttachment(attachment), nil
	})
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// UserRepository implements ports.UserRepository.
type UserRepository struct{ s *Store }

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.s.view(ctx, func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	var out *domain.User
	err := r.s.view(ctx, func(d *state) error {
		for _, u := range d.users {
			if u.HasLogin(login) {
				out = &u
				return nil
			}
		}
		return apperrors.ErrUserNotFound
	})
	return out, err
}

// CatalogRepository implements ports.CatalogRepository.
type CatalogRepository struct{ s *Store }

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var out *domain.Category
	err := r.s.view(ctx, func(d *state) error {
		c, ok := d.categories[id]
		if !ok {
			return apperrors.ErrCategoryNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *CatalogRepository) GetProblem(ctx context.Context, id int64) (*domain.ProblemType, error) {
	var out *domain.ProblemType
	err := r.s.view(ctx, func(d *state) error {
		p, ok := d.problems[id]
		if !ok {
			return apperrors.ErrProblemNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func insertTicket(t domain.Ticket) mutation {
	return func(d *state) error {
		if _, taken := d.numbers[t.Number]; taken {
			return apperrors.ErrConcurrencyConflict
		}
		if err := claim(&d.nextTicketID, t.ID); err != nil {
			return err
		}
		d.tickets[t.ID] = t
		d.numbers[t.Number] = t.ID
		return nil
	}
}

// replaceTicket keeps the stored number and opening time.
func replaceTicket(t domain.Ticket) mutation {
	return func(d *state) error {
		existing, ok := d.tickets[t.ID]
		if !ok {
			return apperrors.ErrTicketNotFound
		}
		stored := t
		stored.Number = existing.Number
		stored.OpenedAt = existing.OpenedAt
		d.tickets[stored.ID] = stored
		return nil
	}
}

func appendHistory(entry domain.HistoryEntry) mutation {
	return func(d *state) error {
		if _, ok := d.tickets[entry.TicketID]; !ok {
			return apperrors.ErrTicketNotFound
		}
		if err := claim(&d.nextHistoryID, entry.ID); err != nil {
			return err
		}
		d.history[entry.TicketID] = append(d.history[entry.TicketID], entry)
		return nil
	}
}

func addAttachment(a domain.Attachment) mutation {
	return func(d *state) error {
		if _, ok := d.tickets[a.TicketID]; !ok {
			return apperrors.ErrTicketNotFound
		}
		if err := claim(&d.nextAttachmentID, a.ID); err != nil {
			return err
		}
		d.attachments[a.TicketID] = append(d.attachments[a.TicketID], a)
		return nil
	}
}

// claim advances a sequence to id, failing when id was already issued.
func claim(seq *int64, id int64) error {
	if id <= *seq {
		return apperrors.ErrConcurrencyConflict
	}
	*seq = id
	return nil
}

// strip drops the collections that live in their own tables.
func strip(t domain.Ticket) domain.Ticket {
	t.History = nil
	t.Attachments = nil
	if t.ClosedAt != nil {
		closed := *t.ClosedAt
		t.ClosedAt = &closed
	}
	return t
}

// hydrate returns a detached copy with users refreshed from the directory
// and history and attachment metadata attached.
func (d *state) hydrate(stored domain.Ticket) *domain.Ticket {
	t := stored
	if t.ClosedAt != nil {
		closed := *t.ClosedAt
		t.ClosedAt = &closed
	}
	t.Requester = d.user(t.Requester)
	t.Technician = d.user(t.Technician)

	t.History = append([]domain.HistoryEntry{}, d.history[t.ID]...)
	t.Attachments = make([]domain.Attachment, 0, len(d.attachments[t.ID]))
	for _, a := range d.attachments[t.ID] {
		a.Content = nil
		t.Attachments = append(t.Attachments, a)
	}
	return &t
}

func (d *state) user(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	if fresh, ok := d.users[u.ID]; ok {
		return &fresh
	}
	copied := *u
	return &copied
}
