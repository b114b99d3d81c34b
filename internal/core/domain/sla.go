package domain

import "time"

// SLAOffset returns how long a ticket of the given priority may stay active.
func SLAOffset(priority TicketPriority) time.Duration {
	switch priority {
	case PriorityCritical:
		return 2 * time.Hour
	case PriorityHigh:
		return 8 * time.Hour
	case PriorityMedium:
		return 24 * time.Hour
	default:
		return 48 * time.Hour
	}
}

// SLADeadline returns the moment a ticket opened at openedAt breaches its SLA.
func SLADeadline(openedAt time.Time, priority TicketPriority) time.Time {
	return openedAt.Add(SLAOffset(priority))
}

// SLADeadline uses the current priority, so reclassifying moves the deadline.
func (t *Ticket) SLADeadline() time.Time {
	return SLADeadline(t.OpenedAt, t.Priority)
}

// IsSLAViolated reports whether an active ticket has passed its deadline.
// Closed tickets and tickets without an open time never violate.
func (t *Ticket) IsSLAViolated(now time.Time) bool {
	if t.Status.IsClosed() || t.OpenedAt.IsZero() {
		return false
	}
	return now.After(t.SLADeadline())
}
