package testutil

import (
	"net/http"
	"net/http/httptest"
)

// StatusHandler replies to every request with the given status and body.
func StatusHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// DetailHandler replies with the API's error payload shape.
func DetailHandler(status int, detail string) http.Handler {
	return StatusHandler(status, `{"detail":"`+detail+`"}`)
}

// RecordingHandler wraps a handler and captures each request it serves.
type RecordingHandler struct {
	Requests []*http.Request
	inner    http.Handler
}

func NewRecordingHandler(inner http.Handler) *RecordingHandler {
	return &RecordingHandler{inner: inner}
}

func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Requests = append(h.Requests, r)
	h.inner.ServeHTTP(w, r)
}

// NewServer starts an httptest server for the handler. Callers own Close.
func NewServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}
