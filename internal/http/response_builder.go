// Package http provides the JSON API server.
//
// This file implements a builder for JSON responses. Mutations also carry an
// HX-Trigger header so an htmx front end can refresh the affected panels.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"arthasync/internal/app"
	"arthasync/internal/core"
	"arthasync/internal/storage"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       any
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *ResponseBuilder) Trigger(name string, data any) *ResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerRecordChanged adds a "<kind>:<op>" trigger, e.g. "expense:created".
func (b *ResponseBuilder) TriggerRecordChanged(kind, op string, month core.Month) *ResponseBuilder {
	data := map[string]string{}
	if month != "" {
		data["month"] = string(month)
	}
	return b.Trigger(kind+":"+op, data)
}

// TriggerDataRefresh tells the client that every derived view is out of date.
func (b *ResponseBuilder) TriggerDataRefresh(revision int64) *ResponseBuilder {
	return b.Trigger("data:refresh", map[string]int64{"revision": revision})
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	if b.body == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().
		Status(statusCode).
		JSON(ErrorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// LockedError is returned for data routes while the PIN gate is locked.
func LockedError() *ResponseBuilder {
	return ErrorResponse(http.StatusLocked, "locked: unlock with your PIN first")
}

// ErrorFromDomain maps controller and store errors to a status code.
// Unexpected errors never leak their text to the client.
func ErrorFromDomain(err error) *ResponseBuilder {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return NewResponse().
			Status(http.StatusUnprocessableEntity).
			JSON(ErrorBody{Error: verr.Err.Error(), Field: verr.Field})
	case errors.Is(err, storage.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, app.ErrIncorrectPIN):
		return ErrorResponse(http.StatusUnauthorized, "incorrect PIN")
	case errors.Is(err, app.ErrNotLoaded):
		return ErrorResponse(http.StatusServiceUnavailable, "data not loaded")
	default:
		return InternalServerError("internal error")
	}
}
