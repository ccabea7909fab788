package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetStatus(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/server/status" {
			t.Errorf("path = %q, want /api/v1/server/status", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state":"running","version":"1.20.4","uptime_seconds":3600,"players":3,"max_players":16}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	status, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if status.State != "running" {
		t.Errorf("State = %q, want %q", status.State, "running")
	}
	if status.UptimeSeconds != 3600 {
		t.Errorf("UptimeSeconds = %d, want 3600", status.UptimeSeconds)
	}
	if status.Players != 3 {
		t.Errorf("Players = %d, want 3", status.Players)
	}
}

func TestListLogFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/logs/files" {
			t.Errorf("path = %q, want /api/v1/logs/files", r.URL.Path)
		}
		w.Write([]byte(`{"files":[{"name":"server-main.log","size_bytes":1024,"modified_at":"2025-06-01T12:00:00Z"},{"name":"server-audit.log","size_bytes":64,"modified_at":"2025-06-01T11:00:00Z"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	files, err := client.ListLogFiles(context.Background())
	if err != nil {
		t.Fatalf("ListLogFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].Name != "server-main.log" {
		t.Errorf("files[0].Name = %q, want %q", files[0].Name, "server-main.log")
	}
	if files[0].SizeBytes != 1024 {
		t.Errorf("files[0].SizeBytes = %d, want 1024", files[0].SizeBytes)
	}
}

func TestRequestStreamToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/api/v1/logs/ws-token" {
			t.Errorf("path = %q, want /api/v1/logs/ws-token", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "{}" {
			t.Errorf("body = %q, want {}", body)
		}
		w.Write([]byte(`{"token":"abc123","expires_at":"2025-06-01T12:05:00Z","expires_in_seconds":300}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	tok, err := client.RequestStreamToken(context.Background())
	if err != nil {
		t.Fatalf("RequestStreamToken failed: %v", err)
	}

	if tok.Value != "abc123" {
		t.Errorf("Value = %q, want %q", tok.Value, "abc123")
	}
	if tok.TTL != 300*time.Second {
		t.Errorf("TTL = %s, want 5m", tok.TTL)
	}
	want := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)
	if !tok.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %s, want %s", tok.ExpiresAt, want)
	}
}

func TestRequestStreamTokenBadExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"abc123","expires_at":"not-a-time","expires_in_seconds":300}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	if _, err := client.RequestStreamToken(context.Background()); err == nil {
		t.Fatal("expected error for malformed expiry")
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"state":"running"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", WithRetries(3, 10*time.Millisecond))

	status, err := client.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.State != "running" {
		t.Errorf("State = %q, want %q", status.State, "running")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", WithRetries(3, 10*time.Millisecond))

	_, err := client.GetStatus(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1 (no retry on 403)", got)
	}
}

func TestErrorEnvelopeMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"unknown log file: server-chat.log"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	_, err := client.ListLogFiles(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "unknown log file: server-chat.log" {
		t.Errorf("Message = %q, want the server's error text", apiErr.Message)
	}
	if len(apiErr.Body) == 0 {
		t.Error("Body is empty, want the raw response preserved")
	}
}

func TestErrorMessageFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", WithRetries(0, time.Millisecond))

	_, err := client.GetStatus(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "Bad Gateway" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "Bad Gateway")
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"state":"running"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "test-key") // trailing slash tolerated

	if _, err := client.GetStatus(context.Background()); err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if !strings.HasPrefix(gotUA, "vs-logtail/") {
		t.Errorf("User-Agent = %q, want a vs-logtail/ prefix", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}
