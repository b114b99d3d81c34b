package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Domain errors. Adapters map these onto transport responses.
var (
	// Authentication & Authorization
	ErrForbidden    = errors.New("action forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Lookups
	ErrUserNotFound     = errors.New("user not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProblemNotFound  = errors.New("problem type not found")

	// Ticket validation
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrRequesterRequired   = errors.New("requester is required")
	ErrCannotAssignClosed  = errors.New("cannot assign a closed ticket")
	ErrInvalidAssignee     = errors.New("assignee must be a technician, manager or admin")

	// Comments and attachments
	ErrCommentBodyRequired     = errors.New("comment body is required")
	ErrCommentBodyTooLong      = errors.New("comment body exceeds maximum length")
	ErrAttachmentNameRequired  = errors.New("attachment file name is required")
	ErrAttachmentTooLarge      = errors.New("attachment exceeds maximum size")
	ErrAttachmentEmptyContents = errors.New("attachment has no content")

	// Storage. Both are safe to retry.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")
	ErrTransient           = errors.New("temporary failure, please retry")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError carries a client-facing message and status alongside the
// underlying error.
type AppError struct {
	Err        error
	Message    string
	Code       string
	StatusCode int
	Details    map[string]any
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(status int, code string, err error, message string) *AppError {
	return &AppError{Err: err, Message: message, Code: code, StatusCode: status}
}

// NewBadRequestError reports a request the service could not interpret.
func NewBadRequestError(err error, message string) *AppError {
	return newAppError(http.StatusBadRequest, "BAD_REQUEST", err, message)
}

// NewConflictError reports a write that collided with existing state.
func NewConflictError(err error, message string) *AppError {
	return newAppError(http.StatusConflict, "CONFLICT", err, message)
}

// ValidationErrors collects per-field messages.
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make(map[string][]string)}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error lists the failing fields in name order.
func (v *ValidationErrors) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}
