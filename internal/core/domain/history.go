package domain

import "time"

const MaxCommentLength = 5000

// History action labels.
const (
	ActionOpened      = "Ticket Opened"
	ActionSelfClaimed = "Self-claimed"
	ActionAssigned    = "Assigned"
	ActionClosed      = "Closed"
	ActionReopened    = "Reopened"
	ActionClassified  = "Classified"
	ActionCommented   = "Comment"
	ActionAttached    = "Attachment"
)

// SystemActor is shown for entries with no acting user.
const SystemActor = "System"

// HistoryEntry is an immutable audit record of a ticket.
type HistoryEntry struct {
	ID         int64
	TicketID   int64
	Action     string
	Comment    string
	Actor      *User
	OccurredAt time.Time
}

// ActorName returns the acting user's name, or SystemActor.
func (h HistoryEntry) ActorName() string {
	if h.Actor == nil || h.Actor.Name == "" {
		return SystemActor
	}
	return h.Actor.Name
}

func newEntry(t *Ticket, action, comment string, actor *User, now time.Time) HistoryEntry {
	return HistoryEntry{
		TicketID:   t.ID,
		Action:     action,
		Comment:    comment,
		Actor:      actor,
		OccurredAt: now,
	}
}
