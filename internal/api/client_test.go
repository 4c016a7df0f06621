package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDo_BearerHeaderAndSkipAuth(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_id":"s1","session_token":"tok","status":"active"}`))
	}))
	defer srv.Close()

	tokens := &TokenStore{}
	tokens.Set("secret")
	c := New(srv.URL, tokens)

	// create skips auth even with a token present
	if _, err := c.CreateSession(context.Background(), CreateSessionBody{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.RefreshSession(context.Background(), "s1"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if gotAuth[0] != "" {
		t.Fatalf("create must not send a token, got %q", gotAuth[0])
	}
	if gotAuth[1] != "Bearer secret" {
		t.Fatalf("refresh auth header: %q", gotAuth[1])
	}
}

func TestDo_ErrorDetailExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"session not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.RefreshSession(context.Background(), "nope")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Detail != "session not found" {
		t.Fatalf("error: %+v", apiErr)
	}
	if apiErr.Error() != "api: status 404: session not found" {
		t.Fatalf("message: %q", apiErr.Error())
	}
}

func TestIsAuthError(t *testing.T) {
	for status, want := range map[int]bool{
		401: true, 403: true, 404: true, 422: true,
		400: false, 500: false, 503: false,
	} {
		if got := IsAuthError(&Error{Status: status}); got != want {
			t.Errorf("status %d: got %v", status, got)
		}
	}
	if IsAuthError(errors.New("dial tcp refused")) {
		t.Error("plain errors are never auth errors")
	}
	if IsAuthError(nil) {
		t.Error("nil is not an auth error")
	}
}

func TestHistory_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_id":"s1","total_versions":0,"versions":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.History(context.Background(), "s1", 10, 5); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "limit=10&offset=5" {
		t.Fatalf("query: %q", gotQuery)
	}

	if _, err := c.History(context.Background(), "s1", 0, 0); err != nil {
		t.Fatal(err)
	}
	if gotQuery != "" {
		t.Fatalf("zero paging must send no query, got %q", gotQuery)
	}
}

func TestPDFURL(t *testing.T) {
	c := New("http://localhost:8000/api/", nil)
	got := c.PDFURL("abc", 3)
	want := "http://localhost:8000/api/sessions/abc/forms/3/pdf"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTokenStore(t *testing.T) {
	ts := &TokenStore{}
	if ts.Token() != "" {
		t.Fatal("fresh store must be empty")
	}
	ts.Set("a")
	if ts.Token() != "a" {
		t.Fatalf("token: %q", ts.Token())
	}
	ts.Set("")
	if ts.Token() != "" {
		t.Fatal("empty set must clear")
	}
}
