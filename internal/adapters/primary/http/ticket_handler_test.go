package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/lorrc/helpdesk-core/internal/infrastructure/logging"
)

func TestTicketLogContext(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"ticket route carries its id", "/tickets/42", "42"},
		{"collection route carries nothing", "/tickets", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = r.Context().Value(logging.TicketIDKey).(string)
			})

			r := chi.NewRouter()
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", capture)
				r.With(ticketLogContext).Get("/{ticketID}", capture)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}
