package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTicket(t *testing.T, store *memory.Store, number string, requester *domain.User) *domain.Ticket {
	t.Helper()
	created, err := store.Tickets().Create(context.Background(), &domain.Ticket{
		Number:      number,
		Description: "desc " + number,
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		Requester:   requester,
		OpenedAt:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return created
}

func TestStore_CreateRejectsDuplicateNumber(t *testing.T) {
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Name: "Ana", Login: "ana", Role: domain.RoleUser})

	seedTicket(t, store, "2025-001", user)
	_, err := store.Tickets().Create(context.Background(), &domain.Ticket{Number: "2025-001", Requester: user})

	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)
}

func TestStore_HighestSequence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Login: "ana"})

	highest, err := store.Tickets().HighestSequence(ctx, "2025-")
	require.NoError(t, err)
	assert.Equal(t, 0, highest)

	seedTicket(t, store, "2025-009", user)
	seedTicket(t, store, "2025-010", user)
	seedTicket(t, store, "2024-999", user)

	highest, err = store.Tickets().HighestSequence(ctx, "2025-")
	require.NoError(t, err)
	assert.Equal(t, 10, highest)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Login: "ana"})
	ticket := seedTicket(t, store, "2025-001", user)

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		ticket.Close("done", user, time.Now())
		if _, err := store.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		if _, err := store.History().Append(ctx, domain.HistoryEntry{TicketID: ticket.ID, Action: domain.ActionClosed}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, reloaded.Status)
	assert.Nil(t, reloaded.ClosedAt)
	assert.Empty(t, reloaded.History)
}

func TestStore_FindNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ana := store.AddUser(domain.User{ID: 1, Login: "ana", Role: domain.RoleUser})
	bob := store.AddUser(domain.User{ID: 2, Login: "bob", Role: domain.RoleUser})

	first := seedTicket(t, store, "2025-001", ana)
	seedTicket(t, store, "2025-002", bob)
	third := seedTicket(t, store, "2025-003", ana)

	found, err := store.Tickets().Find(ctx, query.Visibility(ana))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, third.ID, found[0].ID)
	assert.Equal(t, first.ID, found[1].ID)
}

func TestStore_AttachmentContentIsNotReturned(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Login: "ana"})
	ticket := seedTicket(t, store, "2025-001", user)

	_, err := store.Attachments().Add(ctx, domain.Attachment{TicketID: ticket.ID, FileName: "a.txt", Size: 3, Content: []byte("abc")})
	require.NoError(t, err)

	reloaded, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Attachments, 1)
	assert.Equal(t, "a.txt", reloaded.Attachments[0].FileName)
	assert.Nil(t, reloaded.Attachments[0].Content)
}

func TestStore_Lookups(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddUser(domain.User{ID: 1, Login: "Ana"})
	store.AddCategory(domain.Category{ID: 2, Name: "Hardware"})

	u, err := store.Users().GetByLogin(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = store.Users().GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = store.Catalog().GetCategory(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)

	_, err = store.Catalog().GetProblem(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrProblemNotFound)
}

// holdTransaction starts a transaction that runs stage, then waits for the
// error it should finish with. It returns once stage has run.
func holdTransaction(t *testing.T, store *memory.Store, stage func(ctx context.Context) error) (chan<- error, <-chan error) {
	t.Helper()
	staged := make(chan struct{})
	release := make(chan error, 1)
	done := make(chan error, 1)
	go func() {
		done <- store.WithTransaction(context.Background(), func(ctx context.Context) error {
			err := stage(ctx)
			close(staged)
			if err != nil {
				return err
			}
			return <-release
		})
	}()
	<-staged
	return release, done
}

func TestStore_TransactionWritesHiddenUntilCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Login: "ana"})
	ticket := seedTicket(t, store, "2025-001", user)

	release, done := holdTransaction(t, store, func(ctx context.Context) error {
		closed := *ticket
		closed.Close("done", user, time.Now())
		if _, err := store.Tickets().Update(ctx, &closed); err != nil {
			return err
		}
		_, err := store.History().Append(ctx, domain.HistoryEntry{TicketID: ticket.ID, Action: domain.ActionClosed})
		return err
	})

	outside, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, outside.Status)
	assert.Empty(t, outside.History)

	release <- nil
	require.NoError(t, <-done)

	committed, err := store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, committed.Status)
	assert.Len(t, committed.History, 1)
}

func TestStore_WritesOutsideTransactionSurvive(t *testing.T) {
	tests := []struct {
		name   string
		finish error
		closed bool
	}{
		{name: "rollback", finish: errors.New("boom"), closed: false},
		{name: "commit", finish: nil, closed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			user := store.AddUser(domain.User{ID: 1, Login: "ana"})
			ticket := seedTicket(t, store, "2025-001", user)

			release, done := holdTransaction(t, store, func(ctx context.Context) error {
				closed := *ticket
				closed.Close("done", user, time.Now())
				_, err := store.Tickets().Update(ctx, &closed)
				return err
			})

			store.AddUser(domain.User{ID: 2, Login: "bob"})
			other := seedTicket(t, store, "2025-002", user)

			release <- tt.finish
			if tt.finish != nil {
				require.ErrorIs(t, <-done, tt.finish)
			} else {
				require.NoError(t, <-done)
			}

			_, err := store.Users().GetByID(ctx, 2)
			assert.NoError(t, err)
			_, err = store.Tickets().GetByID(ctx, other.ID)
			assert.NoError(t, err)

			reloaded, err := store.Tickets().GetByID(ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.closed, reloaded.Status == domain.StatusClosed)
		})
	}
}

func TestStore_CommitFailsWhenIDTakenMeanwhile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Login: "ana"})
	seedTicket(t, store, "2025-001", user)

	release, done := holdTransaction(t, store, func(ctx context.Context) error {
		_, err := store.Tickets().Create(ctx, &domain.Ticket{Number: "2025-002", Requester: user})
		return err
	})

	outside := seedTicket(t, store, "2025-003", user)

	release <- nil
	require.ErrorIs(t, <-done, apperrors.ErrConcurrencyConflict)

	found, err := store.Tickets().Find(ctx, query.Predicate{})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, outside.ID, found[0].ID)
	assert.Equal(t, "2025-003", found[0].Number)
}

func TestStore_HighestSequenceSkipsMalformedSuffixes(t *testing.T) {
	store := memory.NewStore()
	user := store.AddUser(domain.User{ID: 1, Login: "ana"})

	seedTicket(t, store, "2025-003", user)
	seedTicket(t, store, "2025-+50", user)
	seedTicket(t, store, "2025-1234567890", user)

	highest, err := store.Tickets().HighestSequence(context.Background(), "2025-")
	require.NoError(t, err)
	assert.Equal(t, 3, highest)
}
