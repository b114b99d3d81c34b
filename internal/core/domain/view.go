package domain

import "time"

// RefView is an id/name pair for reference data.
type RefView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AttachmentSummary describes an attachment without its content.
type AttachmentSummary struct {
	ID          int64  `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploadedAt"`
}

// HistoryView matches the API response shape for history entries.
type HistoryView struct {
	Action     string `json:"action"`
	Comment    string `json:"comment"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurredAt"`
}

// TicketView matches the API response shape for tickets.
type TicketView struct {
	ID          int64               `json:"id"`
	Number      string              `json:"number"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	Category    RefView             `json:"category"`
	Problem     RefView             `json:"problem"`
	Requester   UserInfo            `json:"requester"`
	Technician  UserInfo            `json:"technician"`
	OpenedAt    string              `json:"openedAt"`
	ClosedAt    *string             `json:"closedAt"`
	Solution    string              `json:"solution"`
	Reopened    bool                `json:"reopened"`
	Attachments []AttachmentSummary `json:"attachments"`
	History     []HistoryView       `json:"history"`
}

// NewTicketView builds a denormalized view of a ticket. Missing references
// are replaced by placeholders.
func NewTicketView(ticket *Ticket) TicketView {
	view := TicketView{
		ID:          ticket.ID,
		Number:      ticket.Number,
		Description: ticket.Description,
		Status:      ticket.Status.Display(),
		Priority:    string(ticket.Priority),
		Category:    RefView{Name: NoCategory},
		Problem:     RefView{Name: NoProblem},
		Requester:   newUserInfo(ticket.Requester, UnknownRequester),
		Technician:  newUserInfo(ticket.Technician, PendingTechnician),
		OpenedAt:    formatTime(ticket.OpenedAt),
		Solution:    ticket.Solution,
		Reopened:    ticket.Reopened,
		Attachments: make([]AttachmentSummary, 0, len(ticket.Attachments)),
		History:     make([]HistoryView, 0, len(ticket.History)),
	}

	if ticket.Category != nil {
		view.Category = RefView{ID: ticket.Category.ID, Name: ticket.Category.Name}
	}
	if ticket.Problem != nil {
		view.Problem = RefView{ID: ticket.Problem.ID, Name: ticket.Problem.Name}
	}
	if ticket.ClosedAt != nil {
		value := formatTime(*ticket.ClosedAt)
		view.ClosedAt = &value
	}

	for _, a := range ticket.Attachments {
		view.Attachments = append(view.Attachments, AttachmentSummary{
			ID:          a.ID,
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
			UploadedAt:  formatTime(a.UploadedAt),
		})
	}
	for _, h := range ticket.History {
		view.History = append(view.History, HistoryView{
			Action:     h.Action,
			Comment:    h.Comment,
			Actor:      h.ActorName(),
			OccurredAt: formatTime(h.OccurredAt),
		})
	}

	return view
}

// NewTicketViews maps a slice of tickets.
func NewTicketViews(tickets []*Ticket) []TicketView {
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, NewTicketView(t))
	}
	return views
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
