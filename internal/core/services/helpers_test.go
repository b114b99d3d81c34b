package services_test

import (
	"sync"
	"time"

	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/services"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func int64Ptr(v int64) *int64 { return &v }

type world struct {
	store *memory.Store
	clock *fakeClock
	svc   ports.TicketService

	teamA, teamB int64

	ana, bob, olga       *domain.User
	techA, techB, techNo *domain.User
	mgrA, mgrNo          *domain.User
	admin                *domain.User
	hardware             *domain.Category
	network              *domain.ProblemType
}

func newWorld() *world {
	w := &world{
		store: memory.NewStore(),
		clock: newClock(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)),
		teamA: 1,
		teamB: 2,
	}

	w.ana = w.store.AddUser(domain.User{ID: 1, Name: "Ana", Login: "ana", Role: domain.RoleUser, TeamID: int64Ptr(w.teamA)})
	w.bob = w.store.AddUser(domain.User{ID: 2, Name: "Bob", Login: "bob", Role: domain.RoleUser, TeamID: int64Ptr(w.teamB)})
	w.olga = w.store.AddUser(domain.User{ID: 3, Name: "Olga", Login: "olga", Role: domain.RoleUser})
	w.techA = w.store.AddUser(domain.User{ID: 10, Name: "Tina", Login: "tina", Role: domain.RoleTechnician, TeamID: int64Ptr(w.teamA)})
	w.techB = w.store.AddUser(domain.User{ID: 11, Name: "Theo", Login: "theo", Role: domain.RoleTechnician, TeamID: int64Ptr(w.teamB)})
	w.techNo = w.store.AddUser(domain.User{ID: 12, Name: "Nina", Login: "nina", Role: domain.RoleTechnician})
	w.mgrA = w.store.AddUser(domain.User{ID: 20, Name: "Mario", Login: "mario", Role: domain.RoleManager, TeamID: int64Ptr(w.teamA)})
	w.mgrNo = w.store.AddUser(domain.User{ID: 21, Name: "Nora", Login: "nora", Role: domain.RoleManager})
	w.admin = w.store.AddUser(domain.User{ID: 30, Name: "Ada", Login: "ada", Role: domain.RoleAdmin})
	w.hardware = w.store.AddCategory(domain.Category{ID: 1, Name: "Hardware"})
	w.network = w.store.AddProblem(domain.ProblemType{ID: 1, Name: "Network", DefaultPriority: domain.PriorityHigh})

	w.svc = services.NewTicketService(services.TicketServiceDeps{
		Tickets:     w.store.Tickets(),
		History:     w.store.History(),
		Attachments: w.store.Attachments(),
		Users:       w.store.Users(),
		Catalog:     w.store.Catalog(),
		Tx:          w.store,
		Now:         w.clock.Now,
	})
	return w
}

func viewIDs(views []domain.TicketView) []int64 {
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
