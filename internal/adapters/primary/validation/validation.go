package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
)

// DateLayout is the calendar date format accepted in query parameters.
const DateLayout = "2006-01-02"

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Err returns the collected errors, or nil when there are none.
func (v *Validator) Err() error {
	if v.HasErrors() {
		return v.errors
	}
	return nil
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Positive validates that an id is greater than zero
func (v *Validator) Positive(field string, value int64) *Validator {
	if value <= 0 {
		v.errors.Add(field, "Must be a positive number")
	}
	return v
}

// Range validates that value is within [min, max]
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.errors.Add(field, "Must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return v
}

// Custom adds an error when valid is false
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeJSON decodes a JSON request body into T. An empty body decodes to
// the zero value.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return &req, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Request body too large")
		}
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Invalid request body")
	}

	return &req, nil
}

// QueryParser reads typed query parameters and collects one error per
// malformed field.
type QueryParser struct {
	r *http.Request
	v *Validator
}

// NewQueryParser creates a parser over the request's query string.
func NewQueryParser(r *http.Request) *QueryParser {
	return &QueryParser{r: r, v: NewValidator()}
}

// String returns the trimmed value of key.
func (p *QueryParser) String(key string) string {
	return strings.TrimSpace(p.r.URL.Query().Get(key))
}

// Int64 parses an optional integer. Absent values return nil.
func (p *QueryParser) Int64(key string) *int64 {
	raw := p.String(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.v.Custom(key, false, "Must be a whole number")
		return nil
	}
	return &value
}

// Int parses an optional integer and falls back to defaultValue.
func (p *QueryParser) Int(key string, defaultValue int) int {
	raw := p.String(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		p.v.Custom(key, false, "Must be a whole number")
		return defaultValue
	}
	return value
}

// Date parses an optional calendar date or RFC 3339 timestamp.
func (p *QueryParser) Date(key string) *time.Time {
	raw := p.String(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	p.v.Custom(key, false, "Must be a date (YYYY-MM-DD)")
	return nil
}

// Validator exposes the underlying validator for cross-field checks.
func (p *QueryParser) Validator() *Validator {
	return p.v
}

// Err returns the collected parse errors, or nil.
func (p *QueryParser) Err() error {
	return p.v.Err()
}
