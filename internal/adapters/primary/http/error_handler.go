package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/infrastructure/logging"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	RequestID string              `json:"requestId,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
}

// errorRule maps a set of sentinel errors to a response. An empty message
// echoes the error text.
type errorRule struct {
	targets []error
	status  int
	code    string
	message string
}

// errorRules is checked in order; the first rule with a matching target wins.
var errorRules = []errorRule{
	{[]error{apperrors.ErrUnauthorized}, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{[]error{apperrors.ErrForbidden}, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action"},

	{[]error{apperrors.ErrTicketNotFound}, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket not found"},
	{[]error{apperrors.ErrUserNotFound}, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{[]error{apperrors.ErrCategoryNotFound}, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found"},
	{[]error{apperrors.ErrProblemNotFound}, http.StatusNotFound, "PROBLEM_NOT_FOUND", "Problem type not found"},
	{[]error{apperrors.ErrNotFound}, http.StatusNotFound, "NOT_FOUND", "Resource not found"},

	{[]error{
		apperrors.ErrDescriptionRequired,
		apperrors.ErrDescriptionTooLong,
		apperrors.ErrRequesterRequired,
		apperrors.ErrCommentBodyRequired,
		apperrors.ErrCommentBodyTooLong,
		apperrors.ErrAttachmentNameRequired,
		apperrors.ErrAttachmentEmptyContents,
	}, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{[]error{apperrors.ErrAttachmentTooLarge}, http.StatusRequestEntityTooLarge, "ATTACHMENT_TOO_LARGE", "Attachment exceeds maximum size"},

	{[]error{apperrors.ErrCannotAssignClosed}, http.StatusBadRequest, "CANNOT_ASSIGN_CLOSED", "Cannot assign a closed ticket"},
	{[]error{apperrors.ErrInvalidAssignee}, http.StatusBadRequest, "INVALID_ASSIGNEE", "Assignee must be a technician, manager or admin"},
	{[]error{apperrors.ErrBadRequest}, http.StatusBadRequest, "BAD_REQUEST", "Bad request"},
	{[]error{apperrors.ErrConflict}, http.StatusConflict, "CONFLICT", "Resource conflict"},

	{[]error{apperrors.ErrTransient, apperrors.ErrConcurrencyConflict}, http.StatusServiceUnavailable, "TEMPORARILY_UNAVAILABLE", "The service is busy. Please try again."},
	{[]error{apperrors.ErrRateLimited}, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later."},
}

// ErrorHandler turns service errors into JSON responses and logs them.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	requestID := logging.GetRequestID(r.Context())

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		writeJSONError(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:     "Validation failed",
			Code:      "VALIDATION_ERROR",
			RequestID: requestID,
			Fields:    validationErrs.Errors,
		})
		return
	}

	status, response := resolveError(err)
	response.RequestID = requestID
	h.logError(r, status, err)
	writeJSONError(w, status, response)
}

// resolveError picks the status and body for err. Unrecognised errors are
// reported as internal without leaking their text.
func resolveError(err error) (int, ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}

	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if !errors.Is(err, target) {
				continue
			}
			message := rule.message
			if message == "" {
				message = err.Error()
			}
			return rule.status, ErrorResponse{Error: message, Code: rule.code}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: "An unexpected error occurred",
		Code:  "INTERNAL_ERROR",
	}
}

func (h *ErrorHandler) logError(r *http.Request, status int, err error) {
	level, msg := slog.LevelInfo, "request error"
	switch {
	case status >= 500:
		level, msg = slog.LevelError, "server error"
	case status >= 400:
		level, msg = slog.LevelWarn, "client error"
	}

	h.logger.Log(r.Context(), level, msg,
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", status,
		"error", err.Error(),
	)
}

func writeJSONError(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// HandleError writes err when it is non-nil and reports whether it did.
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err == nil {
		return false
	}
	handler.Handle(w, r, err)
	return true
}
