// Package testhelpers provides reusable testing utilities for fleetpulse.
//
// This package contains:
// - an in-memory SQLite database with every table migrated
// - HTTP test helpers (requests, recorders, envelope decoding)
// - data builders for customers, devices and tickets
package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

// ========================================
// Database Helpers
// ========================================

// NewTestDB opens a private in-memory SQLite database and migrates every model.
// The single connection keeps the in-memory database alive for the whole test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(database.DriverSQLite, ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// MustCreate inserts each record or fails the test
func MustCreate(t *testing.T, db *gorm.DB, records ...interface{}) {
	t.Helper()
	for _, r := range records {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("failed to create %T: %v", r, err)
		}
	}
}

// CountRows counts the rows of a model, optionally filtered
func CountRows(t *testing.T, db *gorm.DB, model interface{}, where ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("failed to count %T: %v", model, err)
	}
	return n
}

// ========================================
// HTTP Test Helpers
// ========================================

// HTTPTestContext holds components for HTTP handler testing
type HTTPTestContext struct {
	T        *testing.T
	Recorder *httptest.ResponseRecorder
	Request  *http.Request
}

// NewHTTPTestContext creates a new HTTP test context
func NewHTTPTestContext(t *testing.T, method, path string, body io.Reader) *HTTPTestContext {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	return &HTTPTestContext{
		T:        t,
		Recorder: httptest.NewRecorder(),
		Request:  req,
	}
}

// WithHeader adds a header to the request
func (ctx *HTTPTestContext) WithHeader(key, value string) *HTTPTestContext {
	ctx.Request.Header.Set(key, value)
	return ctx
}

// WithJSONBody sets JSON body on the request
func (ctx *HTTPTestContext) WithJSONBody(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		ctx.T.Fatalf("failed to marshal JSON body: %v", err)
	}
	ctx.Request = httptest.NewRequest(ctx.Request.Method, ctx.Request.URL.String(), bytes.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	return ctx
}

// WithRawBody sets a raw body on the request
func (ctx *HTTPTestContext) WithRawBody(body string) *HTTPTestContext {
	ctx.Request = httptest.NewRequest(ctx.Request.Method, ctx.Request.URL.String(), strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	return ctx
}

// Execute runs the handler and returns the response
func (ctx *HTTPTestContext) Execute(handler http.Handler) *HTTPTestContext {
	handler.ServeHTTP(ctx.Recorder, ctx.Request)
	return ctx
}

// AssertStatus checks the response status code
func (ctx *HTTPTestContext) AssertStatus(expected int) *HTTPTestContext {
	ctx.T.Helper()
	if ctx.Recorder.Code != expected {
		ctx.T.Errorf("expected status %d, got %d. Body: %s", expected, ctx.Recorder.Code, ctx.Recorder.Body.String())
	}
	return ctx
}

// AssertBodyContains checks if response body contains substring
func (ctx *HTTPTestContext) AssertBodyContains(substr string) *HTTPTestContext {
	ctx.T.Helper()
	body := ctx.Recorder.Body.String()
	if !strings.Contains(body, substr) {
		ctx.T.Errorf("expected body to contain %q, got: %s", substr, body)
	}
	return ctx
}

// AssertHeader checks response header value
func (ctx *HTTPTestContext) AssertHeader(key, expected string) *HTTPTestContext {
	ctx.T.Helper()
	got := ctx.Recorder.Header().Get(key)
	if got != expected {
		ctx.T.Errorf("expected header %s=%q, got %q", key, expected, got)
	}
	return ctx
}

// DecodeJSON decodes response body as JSON
func (ctx *HTTPTestContext) DecodeJSON(v interface{}) *HTTPTestContext {
	ctx.T.Helper()
	if err := json.NewDecoder(ctx.Recorder.Body).Decode(v); err != nil {
		ctx.T.Fatalf("failed to decode JSON response: %v", err)
	}
	return ctx
}

// Envelope mirrors the API response envelope with the data left raw so each
// test can decode it into the type it expects.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Stats      json.RawMessage `json:"stats"`
	Error      *EnvelopeError  `json:"error"`
	Timestamp  string          `json:"timestamp"`
}

// Pagination mirrors the pagination block of list responses
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// EnvelopeError mirrors the error block of failed responses
type EnvelopeError struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// DecodeEnvelope decodes the response envelope and, when data is non-nil,
// the payload inside it.
func (ctx *HTTPTestContext) DecodeEnvelope(data interface{}) Envelope {
	ctx.T.Helper()
	var env Envelope
	ctx.DecodeJSON(&env)
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			ctx.T.Fatalf("failed to decode envelope data: %v", err)
		}
	}
	return env
}
