package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLoggingMiddlewareSetsRequestID(t *testing.T) {
	var ctxID string
	h := RequestLoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/html/slides?id=abc", nil))

	headerID := rec.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("no X-Request-ID header set")
	}
	if ctxID != headerID {
		t.Errorf("context id %q != header id %q", ctxID, headerID)
	}
}

func TestRequestLoggingMiddlewareSkipsHealth(t *testing.T) {
	h := RequestLoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestIDFromContext(r.Context()) != "" {
			t.Error("health request was tagged with a request id")
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Header().Get("X-Request-ID") != "" {
		t.Error("health response carries X-Request-ID")
	}
}
