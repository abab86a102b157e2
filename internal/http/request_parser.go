// Package http provides the JSON API server.
//
// This file implements utilities for reading request bodies and query
// parameters. Bodies may be JSON objects or form-encoded, and scalar JSON
// values are read as text so that {"amount": 12.5} and {"amount": "12.5"}
// reach validation the same way.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"arthasync/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

var errInvalidBool = errors.New("invalid boolean")

// ParseMonthParam reads the "month" query parameter. An empty value means the
// current month and is returned as "".
func ParseMonthParam(query url.Values) (core.Month, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return "", nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return "", &core.ValidationError{Field: "month", Err: err}
	}
	return m, nil
}

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = errors.New("request body too large")
		}
	}
	return p
}

// Parse attempts to parse the body as a JSON object or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Has reports whether key was sent at all, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Optional returns nil when key is absent, otherwise its value.
func (p *RequestBodyParser) Optional(key string) *string {
	if !p.Has(key) {
		return nil
	}
	v := p.Get(key)
	return &v
}

// Raw returns the value for key exactly as sent, without trimming or
// dropping control characters. The PIN is compared byte for byte.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// OptionalRaw is Optional without sanitizing.
func (p *RequestBodyParser) OptionalRaw(key string) *string {
	if !p.Has(key) {
		return nil
	}
	v := p.Raw(key)
	return &v
}

// OptionalBool returns nil when key is absent.
func (p *RequestBodyParser) OptionalBool(key string) (*bool, error) {
	if !p.Has(key) {
		return nil, nil
	}
	if p.jsonData != nil {
		if b, ok := p.jsonData[key].(bool); ok {
			return &b, nil
		}
	}
	b, err := strconv.ParseBool(p.Get(key))
	if err != nil {
		return nil, errInvalidBool
	}
	return &b, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
