package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arthasync/internal/app"
	"arthasync/internal/core"
	"arthasync/internal/storage"
)

func TestResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusOK).
		JSON(map[string]string{"status": "ok"}).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("Body = %q", got)
	}
}

func TestResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		TriggerRecordChanged("expense", "created", "2024-05").
		TriggerDataRefresh(7).
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"expense:created"`,
		`"month":"2024-05"`,
		`"data:refresh"`,
		`"revision":7`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusNoContent).
		Header("X-Custom", "value").
		JSON(map[string]string{"ignored": "yes"}).
		Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(map[string]any{"bad": make(chan int)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *ResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("Invalid input"), http.StatusBadRequest, `{"error":"Invalid input"}`},
		{"internal server error", InternalServerError("Something broke"), http.StatusInternalServerError, `{"error":"Something broke"}`},
		{"not found", NotFoundError("Resource not found"), http.StatusNotFound, `{"error":"Resource not found"}`},
		{"locked", LockedError(), http.StatusLocked, `{"error":"locked: unlock with your PIN first"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("Body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, `\u003cscript\u003e`) {
		t.Errorf("Error response did not escape angle brackets: %s", body)
	}
}

func TestErrorFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation error carries field",
			err:        fmt.Errorf("add: %w", &core.ValidationError{Field: "amount", Err: core.ErrMissingAmount}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"amount is required","field":"amount"}`,
		},
		{"not found", fmt.Errorf("delete income: %w", storage.ErrNotFound), http.StatusNotFound, `{"error":"not found"}`},
		{"wrong pin", app.ErrIncorrectPIN, http.StatusUnauthorized, `{"error":"incorrect PIN"}`},
		{"not loaded", app.ErrNotLoaded, http.StatusServiceUnavailable, `{"error":"data not loaded"}`},
		{"unexpected error is hidden", errors.New("disk on fire"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromDomain(tt.err).Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("Body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}
