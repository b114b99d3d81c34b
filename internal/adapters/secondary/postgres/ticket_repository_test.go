package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opened = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func insertTeam(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `INSERT INTO teams (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertUser(t *testing.T, pool *pgxpool.Pool, u domain.User, rawRole string) *domain.User {
	t.Helper()
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, login, email, role, team_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Name, u.Login, u.Email, rawRole, u.TeamID,
	).Scan(&u.ID)
	require.NoError(t, err)
	u.Role = domain.ParseRole(rawRole)
	return &u
}

func newTicket(number string, requester *domain.User) *domain.Ticket {
	return &domain.Ticket{
		Number:      number,
		Description: "ticket " + number,
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		Requester:   requester,
		OpenedAt:    opened,
	}
}

func TestUserRepository_Get(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	team := insertTeam(t, pool, "Infra")
	tina := insertUser(t, pool, domain.User{Name: "Tina", Login: "Tina", TeamID: &team}, "ROLE_TECNICO")

	byID, err := repo.GetByID(ctx, tina.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, byID.Role)
	require.NotNil(t, byID.TeamID)
	assert.Equal(t, team, *byID.TeamID)

	byLogin, err := repo.GetByLogin(ctx, "tina")
	require.NoError(t, err)
	assert.Equal(t, tina.ID, byLogin.ID)

	_, err = repo.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	_, err = repo.GetByID(ctx, 4040)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestCatalogRepository_Get(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	repo := NewCatalogRepository(pool)

	var catID, probID int64
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ('Hardware') RETURNING id`).Scan(&catID))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO problem_types (name, default_priority) VALUES ('Network', 'alta') RETURNING id`).Scan(&probID))

	category, err := repo.GetCategory(ctx, catID)
	require.NoError(t, err)
	assert.Equal(t, "Hardware", category.Name)

	problem, err := repo.GetProblem(ctx, probID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, problem.DefaultPriority)

	_, err = repo.GetCategory(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
	_, err = repo.GetProblem(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrProblemNotFound)
}

func TestTicketRepository_CreateUpdate(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	history := NewHistoryRepository(pool)
	attachments := NewAttachmentRepository(pool)

	ana := insertUser(t, pool, domain.User{Name: "Ana", Login: "ana"}, "usuario")
	tina := insertUser(t, pool, domain.User{Name: "Tina", Login: "tina"}, "tecnico")

	created, err := tickets.Create(ctx, newTicket("2025-001", ana))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ana", created.Requester.Name)
	assert.Nil(t, created.Technician)
	assert.Equal(t, opened, created.OpenedAt)

	_, err = tickets.Create(ctx, newTicket("2025-001", ana))
	assert.ErrorIs(t, err, apperrors.ErrConcurrencyConflict)

	entry := created.Opened(opened)
	_, err = history.Append(ctx, entry)
	require.NoError(t, err)

	_, err = attachments.Add(ctx, domain.Attachment{
		TicketID:   created.ID,
		FileName:   "log.txt",
		Size:       3,
		Content:    []byte("abc"),
		UploadedAt: opened,
	})
	require.NoError(t, err)

	_, err = created.Assign(tina, tina, true, opened.Add(time.Hour))
	require.NoError(t, err)
	created.Close("done", tina, opened.Add(2*time.Hour))
	updated, err := tickets.Update(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusClosed, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, opened.Add(2*time.Hour), *updated.ClosedAt)
	assert.Equal(t, "Tina", updated.Technician.Name)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "Ana", updated.History[0].ActorName())
	require.Len(t, updated.Attachments, 1)
	assert.Nil(t, updated.Attachments[0].Content, "listings never carry content")

	_, err = tickets.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	ghost := newTicket("2025-404", ana)
	ghost.ID = 9999
	_, err = tickets.Update(ctx, ghost)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)

	_, err = history.Append(ctx, domain.HistoryEntry{TicketID: 9999, Action: domain.ActionCommented, OccurredAt: opened})
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}

func TestTicketRepository_HighestSequence(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	ana := insertUser(t, pool, domain.User{Name: "Ana", Login: "ana"}, "user")

	highest, err := tickets.HighestSequence(ctx, "2025-")
	require.NoError(t, err)
	assert.Zero(t, highest)

	for _, number := range []string{"2025-002", "2025-010", "2025-abc", "2024-999", "2025-1003"} {
		_, err := tickets.Create(ctx, newTicket(number, ana))
		require.NoError(t, err)
	}

	highest, err = tickets.HighestSequence(ctx, "2025-")
	require.NoError(t, err)
	assert.Equal(t, 1003, highest)
}

func TestTicketRepository_Transaction(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	tx := NewTransactionManager(pool)
	ana := insertUser(t, pool, domain.User{Name: "Ana", Login: "ana"}, "user")

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := tickets.Create(ctx, newTicket("2025-001", ana)); err != nil {
			return err
		}
		return apperrors.ErrInternal
	})
	require.ErrorIs(t, err, apperrors.ErrInternal)

	all, err := tickets.Find(ctx, query.Predicate{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

// TestTicketRepository_FindParity runs the same predicates against the
// database and the in-memory store.
func TestTicketRepository_FindParity(t *testing.T) {
	pool := requireDB(t)
	ctx := context.Background()
	tickets := NewTicketRepository(pool)
	store := memory.NewStore()

	teamA := insertTeam(t, pool, "A")
	teamB := insertTeam(t, pool, "B")

	users := map[string]*domain.User{
		"ana":   insertUser(t, pool, domain.User{Name: "Ana Lima", Login: "ana", TeamID: &teamA}, "user"),
		"bob":   insertUser(t, pool, domain.User{Name: "Bob 100%", Login: "bob", TeamID: &teamB}, "user"),
		"olga":  insertUser(t, pool, domain.User{Name: "Olga", Login: "olga"}, "user"),
		"tina":  insertUser(t, pool, domain.User{Name: "Tina", Login: "tina", TeamID: &teamA}, "tecnico"),
		"theo":  insertUser(t, pool, domain.User{Name: "Theo", Login: "theo", TeamID: &teamB}, "technician"),
		"nina":  insertUser(t, pool, domain.User{Name: "Nina", Login: "nina"}, "technician"),
		"mario": insertUser(t, pool, domain.User{Name: "Mario", Login: "mario", TeamID: &teamA}, "gestor"),
		"ada":   insertUser(t, pool, domain.User{Name: "Ada", Login: "ada"}, "admin"),
	}
	for _, u := range users {
		store.AddUser(*u)
	}

	seed := []struct {
		requester, technician string
		status                domain.TicketStatus
		openedDaysAgo         int
		closed                bool
	}{
		{"ana", "", domain.StatusOpen, 1, false},
		{"bob", "", domain.StatusOpen, 2, false},
		{"olga", "", domain.StatusOpen, 3, false},
		{"ana", "theo", domain.StatusInProgress, 4, false},
		{"bob", "nina", domain.StatusInProgress, 5, false},
		{"ana", "tina", domain.StatusResolved, 6, true},
		{"bob", "tina", domain.StatusTerminated, 40, true},
		{"olga", "nina", domain.StatusClosed, 41, true},
	}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i, s := range seed {
		ticket := &domain.Ticket{
			Number:      domain.FormatNumber("2025-", i+1),
			Description: "Seed ticket " + s.requester,
			Status:      s.status,
			Priority:    domain.PriorityMedium,
			Requester:   users[s.requester],
			OpenedAt:    now.AddDate(0, 0, -s.openedDaysAgo),
		}
		if s.technician != "" {
			ticket.Technician = users[s.technician]
		}
		if s.closed {
			closedAt := ticket.OpenedAt.Add(3 * time.Hour)
			ticket.ClosedAt = &closedAt
		}

		created, err := tickets.Create(ctx, ticket)
		require.NoError(t, err)
		_, err = store.Tickets().Create(ctx, created)
		require.NoError(t, err)
	}

	predicates := map[string]query.Predicate{
		"all":           {},
		"manager":       query.Visibility(users["mario"]),
		"tech no team":  query.Visibility(users["nina"]),
		"tech team a":   query.Visibility(users["tina"]),
		"requester":     query.Visibility(users["bob"]),
		"closed family": query.Where(query.StatusIn{Statuses: domain.ClosedFamily}),
		"workload b":    query.Workload(domain.OnlyTeam(teamB)),
		"search pct":    query.Where(query.Search{Field: query.SearchRequesterName, Term: "100%"}),
		"search desc":   query.Where(query.Search{Term: "SEED TICKET A"}),
		"closed window": query.Where(query.DateRange{Field: query.ClosedAt, From: now.AddDate(0, 0, -10), To: now}),
		"opened window": query.Where(query.DateRange{Field: query.OpenedAt, From: now.AddDate(0, 0, -4), To: now.AddDate(0, 0, -1)}),
		"eligible filter": query.Eligible(users["ada"], query.ListFilter{
			Status:       "fechados",
			TechnicianID: int64Ptr(users["tina"].ID),
		}),
	}

	for name, p := range predicates {
		t.Run(name, func(t *testing.T) {
			fromDB, err := tickets.Find(ctx, p)
			require.NoError(t, err)
			fromMemory, err := store.Tickets().Find(ctx, p)
			require.NoError(t, err)

			assert.Equal(t, numbers(fromMemory), numbers(fromDB))
		})
	}
}

func numbers(tickets []*domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Number)
	}
	return out
}
