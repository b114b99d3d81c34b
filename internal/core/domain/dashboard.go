package domain

import "time"

// DashboardStats is the live operational summary of an eligible ticket set.
type DashboardStats struct {
	Open               int64            `json:"abertos"`
	InProgress         int64            `json:"emAndamento"`
	Closed             int64            `json:"fechados"`
	Total              int64            `json:"total"`
	SLAViolated        int64            `json:"slaViolado"`
	SLAViolatedTickets []TicketView     `json:"chamadosSlaViolado"`
	PerAnalyst         map[string]int64 `json:"chamadosPorAnalista"`
}

// EmptyDashboard returns a zeroed summary with non-nil collections.
func EmptyDashboard() DashboardStats {
	return DashboardStats{
		SLAViolatedTickets: []TicketView{},
		PerAnalyst:         map[string]int64{},
	}
}

// ComputeDashboard partitions tickets into Open, InProgress and Closed.
// Every ticket lands in exactly one bucket; an unrecognized raw status
// counts as Open. Total is the number of active tickets.
func ComputeDashboard(tickets []*Ticket, now time.Time) DashboardStats {
	stats := EmptyDashboard()

	for _, t := range tickets {
		switch {
		case t.Status.IsClosed():
			stats.Closed++
			continue
		case t.Status == StatusInProgress:
			stats.InProgress++
			if t.Technician != nil {
				stats.PerAnalyst[t.Technician.Name]++
			}
		default:
			stats.Open++
		}

		stats.Total++
		if t.IsSLAViolated(now) {
			stats.SLAViolated++
			stats.SLAViolatedTickets = append(stats.SLAViolatedTickets, NewTicketView(t))
		}
	}

	return stats
}
