package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	mw "github.com/lorrc/helpdesk-core/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-core/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/lorrc/helpdesk-core/internal/core/query"
	"github.com/lorrc/helpdesk-core/internal/infrastructure/logging"
)

// multipartMemory is the part of a multipart upload kept in memory; the
// rest spills to temporary files.
const multipartMemory = 8 << 20

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService ports.TicketService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService ports.TicketService, errorHandler *ErrorHandler, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)
	r.Get("/me", h.HandleListMyTickets)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Use(ticketLogContext)
		r.Get("/", h.HandleGetTicket)
		r.Post("/claim", h.HandleClaim)
		r.Post("/assign", h.HandleAssign)
		r.Post("/classify", h.HandleClassify)
		r.Post("/close", h.HandleClose)
		r.Post("/reopen", h.HandleReopen)
		r.Post("/comments", h.HandleComment)
		r.Post("/attachments", h.HandleUploadAttachment)
	})
}

// --- Request DTOs ---

// AttachmentUpload is an inline attachment. Content is base64 encoded in JSON.
type AttachmentUpload struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Description string             `json:"description"`
	CategoryID  *int64             `json:"categoryId"`
	ProblemID   *int64             `json:"problemId"`
	Priority    string             `json:"priority"`
	Attachments []AttachmentUpload `json:"attachments"`
}

// Validate validates the create ticket request
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("description", r.Description).
		MaxLength("description", r.Description, domain.MaxDescriptionLength)

	for i, a := range r.Attachments {
		field := "attachments[" + strconv.Itoa(i) + "]"
		v.Required(field+".fileName", a.FileName)
		v.Custom(field+".content", len(a.Content) > 0, "Must not be empty")
		v.Custom(field+".content", len(a.Content) <= domain.MaxAttachmentSize, "Exceeds the maximum attachment size")
	}

	return v.Err()
}

// AssignTicketRequest defines the expected JSON body for assigning a ticket
type AssignTicketRequest struct {
	TechnicianID int64 `json:"technicianId"`
}

func (r *AssignTicketRequest) Validate() error {
	return validation.NewValidator().Positive("technicianId", r.TechnicianID).Err()
}

// ClassifyTicketRequest defines the expected JSON body for classifying a ticket
type ClassifyTicketRequest struct {
	CategoryID *int64 `json:"categoryId"`
	Priority   string `json:"priority"`
}

// CloseTicketRequest defines the expected JSON body for closing a ticket
type CloseTicketRequest struct {
	Solution string `json:"solution"`
}

func (r *CloseTicketRequest) Validate() error {
	return validation.NewValidator().
		MaxLength("solution", r.Solution, domain.MaxDescriptionLength).
		Err()
}

// ReopenTicketRequest defines the expected JSON body for reopening a ticket
type ReopenTicketRequest struct {
	Reason string `json:"reason"`
}

func (r *ReopenTicketRequest) Validate() error {
	return validation.NewValidator().
		MaxLength("reason", r.Reason, domain.MaxCommentLength).
		Err()
}

// CommentRequest defines the expected JSON body for commenting
type CommentRequest struct {
	Body string `json:"body"`
}

func (r *CommentRequest) Validate() error {
	return validation.NewValidator().
		Required("body", r.Body).
		MaxLength("body", r.Body, domain.MaxCommentLength).
		Err()
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := validation.NewQueryParser(r)
	filter := query.ListFilter{
		SearchType:   q.String("searchType"),
		Term:         q.String("term"),
		DateField:    q.String("dateType"),
		From:         q.Date("from"),
		To:           q.Date("to"),
		Status:       q.String("status"),
		CategoryID:   q.Int64("categoryId"),
		RequesterID:  q.Int64("requesterId"),
		TechnicianID: q.Int64("technicianId"),
		TeamID:       q.Int64("teamId"),
	}
	if HandleError(w, r, q.Err(), h.errorHandler) {
		return
	}

	tickets, err := h.ticketService.ListTickets(r.Context(), caller, filter)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, tickets)
}

// HandleListMyTickets handles GET /tickets/me
func (h *TicketHandler) HandleListMyTickets(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	tickets, err := h.ticketService.ListMyTickets(r.Context(), caller, r.URL.Query().Get("status"))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, tickets)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[CreateTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	params := ports.CreateTicketParams{
		Requester:   caller,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ProblemID:   req.ProblemID,
		Priority:    req.Priority,
	}
	for _, a := range req.Attachments {
		params.Attachments = append(params.Attachments, ports.NewAttachment{
			FileName:    a.FileName,
			ContentType: contentType(a.ContentType, a.Content),
			Content:     a.Content,
		})
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), params)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created",
		"ticket_id", ticket.ID,
		"number", ticket.Number,
	)

	WriteCreated(w, domain.NewTicketView(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	view, err := h.ticketService.GetTicket(r.Context(), caller, ticketID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, view)
}

// HandleClaim handles POST /tickets/{ticketID}/claim
func (h *TicketHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	ticket, err := h.ticketService.AssignSelf(r.Context(), caller, ticketID)
	h.writeTicket(w, r, ticket, err)
}

// HandleAssign handles POST /tickets/{ticketID}/assign
func (h *TicketHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[AssignTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	ticket, err := h.ticketService.AssignTo(r.Context(), ports.AssignTicketParams{
		TicketID:     ticketID,
		TechnicianID: req.TechnicianID,
		Actor:        caller,
	})
	h.writeTicket(w, r, ticket, err)
}

// HandleClassify handles POST /tickets/{ticketID}/classify
func (h *TicketHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[ClassifyTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	ticket, err := h.ticketService.Classify(r.Context(), ports.ClassifyTicketParams{
		TicketID:   ticketID,
		CategoryID: req.CategoryID,
		Priority:   req.Priority,
		Actor:      caller,
	})
	h.writeTicket(w, r, ticket, err)
}

// HandleClose handles POST /tickets/{ticketID}/close
func (h *TicketHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[CloseTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	ticket, err := h.ticketService.Close(r.Context(), ports.CloseTicketParams{
		TicketID: ticketID,
		Solution: req.Solution,
		Actor:    caller,
	})
	h.writeTicket(w, r, ticket, err)
}

// HandleReopen handles POST /tickets/{ticketID}/reopen
func (h *TicketHandler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[ReopenTicketRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	ticket, err := h.ticketService.Reopen(r.Context(), ports.ReopenTicketParams{
		TicketID: ticketID,
		Reason:   req.Reason,
		Actor:    caller,
	})
	h.writeTicket(w, r, ticket, err)
}

// HandleComment handles POST /tickets/{ticketID}/comments
func (h *TicketHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeJSON[CommentRequest](r)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if HandleError(w, r, req.Validate(), h.errorHandler) {
		return
	}

	ticket, err := h.ticketService.AddComment(r.Context(), ports.CommentParams{
		TicketID: ticketID,
		Body:     req.Body,
		Actor:    caller,
	})
	h.writeTicket(w, r, ticket, err)
}

// HandleUploadAttachment handles POST /tickets/{ticketID}/attachments with
// a multipart "file" part.
func (h *TicketHandler) HandleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	caller, ticketID, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.Handle(w, r, apperrors.ErrAttachmentTooLarge)
			return
		}
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Expected a multipart form with a file part"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "The file part is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, domain.MaxAttachmentSize+1))
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	if len(content) > domain.MaxAttachmentSize {
		h.errorHandler.Handle(w, r, apperrors.ErrAttachmentTooLarge)
		return
	}

	ticket, err := h.ticketService.AddAttachment(r.Context(), ports.AttachmentParams{
		TicketID: ticketID,
		File: ports.NewAttachment{
			FileName:    header.Filename,
			ContentType: contentType(header.Header.Get("Content-Type"), content),
			Content:     content,
		},
		Actor: caller,
	})
	h.writeTicket(w, r, ticket, err)
}

// --- Helpers ---

func (h *TicketHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	caller, ok := mw.CallerFromContext(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return nil, false
	}
	return caller, true
}

// ticketLogContext tags log records of a ticket route with its id.
func ticketLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chi.URLParam(r, "ticketID"); id != "" {
			r = r.WithContext(logging.WithTicketID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// target returns the caller and the ticket id from the path.
func (h *TicketHandler) target(w http.ResponseWriter, r *http.Request) (*domain.User, int64, bool) {
	caller, ok := h.caller(w, r)
	if !ok {
		return nil, 0, false
	}

	ticketID, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
	if err != nil || ticketID <= 0 {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Invalid ticket ID"))
		return nil, 0, false
	}
	return caller, ticketID, true
}

func (h *TicketHandler) writeTicket(w http.ResponseWriter, r *http.Request, ticket *domain.Ticket, err error) {
	if HandleError(w, r, err, h.errorHandler) {
		return
	}
	WriteJSON(w, http.StatusOK, domain.NewTicketView(ticket))
}

func contentType(declared string, content []byte) string {
	if declared != "" {
		return declared
	}
	return http.DetectContentType(content)
}
