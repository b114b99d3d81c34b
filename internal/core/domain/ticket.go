package domain

import (
	"strings"
	"time"

	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
)

const MaxDescriptionLength = 10000

// TicketStatus is the persisted status value of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "Aberto"
	StatusInProgress TicketStatus = "Em Andamento"
	StatusClosed     TicketStatus = "Fechado"
	StatusResolved   TicketStatus = "Resolvido"
	StatusTerminated TicketStatus = "Encerrado"
)

// ClosedFamily lists every raw status that counts as closed.
var ClosedFamily = []TicketStatus{StatusResolved, StatusClosed, StatusTerminated}

var statusSynonyms = map[string]TicketStatus{
	"aberto":      StatusOpen,
	"open":        StatusOpen,
	"emandamento": StatusInProgress,
	"inprogress":  StatusInProgress,
	"fechado":     StatusClosed,
	"fechados":    StatusClosed,
	"closed":      StatusClosed,
	"resolvido":   StatusResolved,
	"resolved":    StatusResolved,
	"encerrado":   StatusTerminated,
	"terminated":  StatusTerminated,
}

// ParseStatus resolves a raw or localized status name.
func ParseStatus(raw string) (TicketStatus, bool) {
	status, ok := statusSynonyms[foldKey(raw)]
	return status, ok
}

func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed, StatusResolved, StatusTerminated:
		return true
	}
	return false
}

// IsClosed reports whether the status belongs to the closed family.
func (s TicketStatus) IsClosed() bool {
	return s == StatusClosed || s == StatusResolved || s == StatusTerminated
}

// Display returns the externally visible label. The closed family
// collapses to a single "Fechado".
func (s TicketStatus) Display() string {
	if s.IsClosed() {
		return string(StatusClosed)
	}
	return string(s)
}

// TicketPriority is the persisted priority value of a ticket.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "Baixa"
	PriorityMedium   TicketPriority = "Média"
	PriorityHigh     TicketPriority = "Elevada"
	PriorityCritical TicketPriority = "Crítica"
)

var prioritySynonyms = map[string]TicketPriority{
	"baixa":    PriorityLow,
	"low":      PriorityLow,
	"media":    PriorityMedium,
	"medium":   PriorityMedium,
	"normal":   PriorityMedium,
	"elevada":  PriorityHigh,
	"alta":     PriorityHigh,
	"high":     PriorityHigh,
	"critica":  PriorityCritical,
	"critical": PriorityCritical,
	"urgente":  PriorityCritical,
	"urgent":   PriorityCritical,
}

// ParsePriority resolves a raw or localized priority name.
func ParsePriority(raw string) (TicketPriority, bool) {
	priority, ok := prioritySynonyms[foldKey(raw)]
	return priority, ok
}

func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Ticket is the core domain entity.
type Ticket struct {
	ID          int64
	Number      string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    *Category
	Problem     *ProblemType
	Requester   *User
	Technician  *User
	OpenedAt    time.Time
	ClosedAt    *time.Time
	Solution    string
	Reopened    bool
	Attachments []Attachment
	History     []HistoryEntry
}

// TicketParams holds the inputs of NewTicket.
type TicketParams struct {
	Description string
	Requester   *User
	Category    *Category
	Problem     *ProblemType
	// Priority is the raw caller input. Unrecognized values fall back to
	// the problem type default, then to Medium.
	Priority string
}

// Validate validates ticket creation parameters
func (p TicketParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	description := strings.TrimSpace(p.Description)
	if description == "" {
		errs.Add("description", apperrors.ErrDescriptionRequired.Error())
	} else if len(description) > MaxDescriptionLength {
		errs.Add("description", apperrors.ErrDescriptionTooLong.Error())
	}
	if p.Requester == nil {
		errs.Add("requester", apperrors.ErrRequesterRequired.Error())
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ResolvePriority picks the explicit priority when it is recognized,
// otherwise the problem type default, otherwise Medium.
func ResolvePriority(raw string, problem *ProblemType) TicketPriority {
	if priority, ok := ParsePriority(raw); ok {
		return priority
	}
	if problem != nil && problem.DefaultPriority.IsValid() {
		return problem.DefaultPriority
	}
	return PriorityMedium
}

// NewTicket is a factory function to create a valid new ticket. The number
// is assigned later by the sequencer.
func NewTicket(params TicketParams, now time.Time) (*Ticket, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Ticket{
		Description: strings.TrimSpace(params.Description),
		Status:      StatusOpen,
		Priority:    ResolvePriority(params.Priority, params.Problem),
		Category:    params.Category,
		Problem:     params.Problem,
		Requester:   params.Requester,
		OpenedAt:    now,
	}, nil
}

// Opened returns the history entry recorded when the ticket is created.
func (t *Ticket) Opened(now time.Time) HistoryEntry {
	return newEntry(t, ActionOpened, "", t.Requester, now)
}

// Assign hands the ticket to a technician and moves it to InProgress.
// Reassigning an in-progress ticket replaces the technician.
func (t *Ticket) Assign(technician, actor *User, selfClaim bool, now time.Time) (HistoryEntry, error) {
	if t.Status.IsClosed() {
		return HistoryEntry{}, apperrors.ErrCannotAssignClosed
	}
	if technician == nil || !technician.Role.IsStaff() {
		return HistoryEntry{}, apperrors.ErrInvalidAssignee
	}

	t.Technician = technician
	t.Status = StatusInProgress

	if selfClaim {
		return newEntry(t, ActionSelfClaimed, "", actor, now), nil
	}
	return newEntry(t, ActionAssigned, "Assigned to: "+technician.Name, actor, now), nil
}

// Close records the solution and moves the ticket to Closed. Closing an
// already closed ticket is permitted and audited again.
func (t *Ticket) Close(solution string, actor *User, now time.Time) HistoryEntry {
	solution = strings.TrimSpace(solution)
	t.Status = StatusClosed
	t.Solution = solution
	closedAt := now
	t.ClosedAt = &closedAt
	return newEntry(t, ActionClosed, "Solution: "+solution, actor, now)
}

// Reopen moves the ticket back to Open and marks it as reopened for good.
// The assigned technician is kept.
func (t *Ticket) Reopen(reason string, actor *User, now time.Time) HistoryEntry {
	t.Status = StatusOpen
	t.ClosedAt = nil
	t.Reopened = true
	return newEntry(t, ActionReopened, "Reason: "+strings.TrimSpace(reason), actor, now)
}

// Classify updates category and priority. A nil category or an invalid
// priority leaves that field unchanged.
func (t *Ticket) Classify(category *Category, priority TicketPriority, actor *User, now time.Time) HistoryEntry {
	if category != nil {
		t.Category = category
	}
	if priority.IsValid() {
		t.Priority = priority
	}

	parts := make([]string, 0, 2)
	if t.Category != nil {
		parts = append(parts, t.Category.Name)
	}
	parts = append(parts, string(t.Priority))
	return newEntry(t, ActionClassified, "Classification: "+strings.Join(parts, " / "), actor, now)
}

// Comment produces a history entry without touching any field.
func (t *Ticket) Comment(text string, actor *User, now time.Time) (HistoryEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return HistoryEntry{}, apperrors.ErrCommentBodyRequired
	}
	if len(text) > MaxCommentLength {
		return HistoryEntry{}, apperrors.ErrCommentBodyTooLong
	}
	return newEntry(t, ActionCommented, text, actor, now), nil
}

// Attach appends the attachment and records its file name.
func (t *Ticket) Attach(attachment Attachment, actor *User, now time.Time) (HistoryEntry, error) {
	if err := attachment.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	attachment.TicketID = t.ID
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = now
	}
	t.Attachments = append(t.Attachments, attachment)
	return newEntry(t, ActionAttached, "Attachment: "+attachment.FileName, actor, now), nil
}

// IsOwnedBy reports whether the user raised the ticket.
func (t *Ticket) IsOwnedBy(user *User) bool {
	return t.Requester != nil && user.HasLogin(t.Requester.Login)
}

// IsAssignedTo reports whether the ticket is assigned to the user.
func (t *Ticket) IsAssignedTo(user *User) bool {
	return t.Technician != nil && user.HasLogin(t.Technician.Login)
}
