package http

import (
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/helpdesk-core/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-core/internal/auth"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/services"
)

// TestTicketFlow drives a ticket through its lifecycle against the
// in-memory store, with real services behind the router.
func TestTicketFlow(t *testing.T) {
	store := memory.NewStore()
	team := int64(1)
	requester := store.AddUser(domain.User{ID: 1, Name: "Ana", Login: "ana", Role: domain.RoleUser, TeamID: &team})
	tech := store.AddUser(domain.User{ID: 10, Name: "Tina", Login: "tina", Role: domain.RoleTechnician, TeamID: &team})
	admin := store.AddUser(domain.User{ID: 30, Name: "Ada", Login: "ada", Role: domain.RoleAdmin})
	store.AddCategory(domain.Category{ID: 1, Name: "Hardware"})

	now := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tickets := services.NewTicketService(services.TicketServiceDeps{
		Tickets:     store.Tickets(),
		History:     store.History(),
		Attachments: store.Attachments(),
		Users:       store.Users(),
		Catalog:     store.Catalog(),
		Tx:          store,
		Now:         clock,
	})

	tokens := auth.NewTokenManager("flow-secret", "helpdesk", time.Hour)
	limiter := mw.NewRateLimiter(mw.RateLimiterConfig{RequestsPerSecond: 100, BurstSize: 100})
	t.Cleanup(limiter.Stop)

	router := NewRouter(RouterDeps{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		TokenManager: tokens,
		Callers:      services.NewCallerService(store.Users()),
		Tickets:      tickets,
		Dashboard:    services.NewDashboardService(store.Tickets(), clock),
		Reports:      services.NewReportService(store.Tickets(), clock),
		RateLimiter:  limiter,
	})

	call := func(as *domain.User, method, target, body string) *httptest.ResponseRecorder {
		t.Helper()
		var reader io.Reader = stdhttp.NoBody
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.Header.Set("Content-Type", "application/json")
		token, err := tokens.GenerateToken(as.ID, as.Login)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := call(requester, stdhttp.MethodPost, "/api/v1/tickets", `{"description":"Monitor flickers","priority":"alta"}`)
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.TicketView](t, rec)
	assert.Equal(t, "2025-001", created.Number)
	assert.Equal(t, "Aberto", created.Status)
	assert.Equal(t, "Elevada", created.Priority)

	// The open unassigned ticket is in the technician's team queue.
	rec = call(tech, stdhttp.MethodGet, "/api/v1/tickets", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[ListResponse[domain.TicketView]](t, rec).Count)

	path := "/api/v1/tickets/" + strconv.FormatInt(created.ID, 10)

	rec = call(tech, stdhttp.MethodPost, path+"/claim", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Em Andamento", decode[domain.TicketView](t, rec).Status)

	rec = call(admin, stdhttp.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	stats := decode[domain.DashboardStats](t, rec)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, map[string]int64{"Tina": 1}, stats.PerAnalyst)

	rec = call(tech, stdhttp.MethodPost, path+"/classify", `{"categoryId":1,"priority":"baixa"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hardware", decode[domain.TicketView](t, rec).Category.Name)

	now = now.Add(3 * time.Hour)
	rec = call(tech, stdhttp.MethodPost, path+"/close", `{"solution":"Replaced cable"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	closed := decode[domain.TicketView](t, rec)
	assert.Equal(t, "Fechado", closed.Status)
	require.NotNil(t, closed.ClosedAt)

	rec = call(tech, stdhttp.MethodGet, "/api/v1/reports/analysts?year=2025&month=6", "")
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[{"name":"Tina","count":1}],"count":1}`, rec.Body.String())

	rec = call(requester, stdhttp.MethodPost, path+"/reopen", `{"reason":"Still flickering"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	reopened := decode[domain.TicketView](t, rec)
	assert.True(t, reopened.Reopened)
	assert.Equal(t, "Tina", reopened.Technician.Name)

	rec = call(requester, stdhttp.MethodPost, path+"/comments", `{"body":"Thanks"}`)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	actions := make([]string, 0)
	for _, h := range decode[domain.TicketView](t, rec).History {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{
		domain.ActionOpened,
		domain.ActionSelfClaimed,
		domain.ActionClassified,
		domain.ActionClosed,
		domain.ActionReopened,
		domain.ActionCommented,
	}, actions)

	rec = call(requester, stdhttp.MethodGet, "/api/v1/reports/analysts?year=2025&month=6", "")
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	rec = call(requester, stdhttp.MethodGet, "/api/v1/tickets/999", "")
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}
