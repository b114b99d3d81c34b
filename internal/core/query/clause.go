// Package query builds the predicates that gate every read of the ticket
// population. A Predicate is an AND of independent clauses; the same
// clauses are evaluated in memory by Match and translated to SQL by the
// postgres adapter.
package query

import (
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
)

// Clause is one boolean condition over a ticket. The set of clause types
// is closed; evaluators switch on the concrete type.
type Clause interface {
	isClause()
}

// RequesterLogin matches tickets raised by the login, ignoring case.
type RequesterLogin struct{ Login string }

// RequesterTeam matches tickets whose requester belongs to the team.
type RequesterTeam struct{ TeamID int64 }

// TechnicianLogin matches tickets assigned to the login, ignoring case.
type TechnicianLogin struct{ Login string }

// TechnicianTeam matches tickets whose technician belongs to the team.
type TechnicianTeam struct{ TeamID int64 }

// Unassigned matches tickets without a technician.
type Unassigned struct{}

// HasTechnician matches tickets with a technician.
type HasTechnician struct{}

// HasCategory matches classified tickets.
type HasCategory struct{}

// StatusIn matches tickets whose raw status is one of Statuses.
type StatusIn struct{ Statuses []domain.TicketStatus }

// SearchField selects the ticket field a free-text search runs against.
type SearchField int

const (
	SearchDescription SearchField = iota
	SearchNumber
	SearchRequesterName
	SearchPriority
)

// Search matches tickets whose field contains Term, ignoring case. Term is
// literal: wildcard characters carry no special meaning.
type Search struct {
	Field SearchField
	Term  string
}

// DateField selects the timestamp a DateRange compares.
type DateField int

const (
	OpenedAt DateField = iota
	ClosedAt
)

// DateRange matches tickets whose timestamp lies in [From, To). A zero
// bound is open. A missing close timestamp never matches a bounded range.
type DateRange struct {
	Field    DateField
	From, To time.Time
}

// CategoryIs matches tickets of a category.
type CategoryIs struct{ ID int64 }

// RequesterIs matches tickets raised by a user id.
type RequesterIs struct{ ID int64 }

// TechnicianIs matches tickets assigned to a user id.
type TechnicianIs struct{ ID int64 }

// Any matches when at least one clause matches. An empty Any never matches.
type Any struct{ Clauses []Clause }

// All matches when every clause matches. An empty All always matches.
type All struct{ Clauses []Clause }

// Never matches nothing.
type Never struct{}

func (RequesterLogin) isClause()  {}
func (RequesterTeam) isClause()   {}
func (TechnicianLogin) isClause() {}
func (TechnicianTeam) isClause()  {}
func (Unassigned) isClause()      {}
func (HasTechnician) isClause()   {}
func (HasCategory) isClause()     {}
func (StatusIn) isClause()        {}
func (Search) isClause()          {}
func (DateRange) isClause()       {}
func (CategoryIs) isClause()      {}
func (RequesterIs) isClause()     {}
func (TechnicianIs) isClause()    {}
func (Any) isClause()             {}
func (All) isClause()             {}
func (Never) isClause()           {}

// Predicate is the conjunction of its clauses. The zero value matches
// every ticket.
type Predicate struct {
	Clauses []Clause
}

// Where starts a predicate from clauses.
func Where(clauses ...Clause) Predicate {
	return Predicate{Clauses: clauses}
}

// And returns a new predicate with the extra clauses appended.
func (p Predicate) And(clauses ...Clause) Predicate {
	merged := make([]Clause, 0, len(p.Clauses)+len(clauses))
	merged = append(merged, p.Clauses...)
	merged = append(merged, clauses...)
	return Predicate{Clauses: merged}
}

// IsNever reports whether the predicate contains a top-level Never, in
// which case callers may skip the store entirely.
func (p Predicate) IsNever() bool {
	for _, c := range p.Clauses {
		if _, ok := c.(Never); ok {
			return true
		}
	}
	return false
}
