package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// Sequencer hands out year-scoped ticket numbers. Callers must hold the
// creation lock and run Next inside the transaction that inserts the ticket.
type Sequencer struct {
	tickets ports.TicketRepository
	now     func() time.Time
}

func NewSequencer(tickets ports.TicketRepository, now func() time.Time) *Sequencer {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Sequencer{tickets: tickets, now: now}
}

// Next returns the number following the highest one issued this year.
func (s *Sequencer) Next(ctx context.Context) (string, error) {
	prefix := domain.NumberPrefix(s.now().Year())
	highest, err := s.tickets.HighestSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("reading highest ticket number: %w", err)
	}
	return domain.FormatNumber(prefix, highest+1), nil
}
