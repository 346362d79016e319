package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"foildb/internal/fetch"
)

func TestGetReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := fetch.New(5)
	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "image-bytes" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestGetRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("eventually"))
	}))
	defer server.Close()

	var delays []time.Duration
	client := fetch.New(5,
		fetch.WithRetries(3),
		fetch.WithBackoff(500*time.Millisecond, 5*time.Second),
		fetch.WithSleeper(func(d time.Duration) { delays = append(delays, d) }),
	)

	body, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "eventually" {
		t.Fatalf("unexpected body: %q", body)
	}
	if calls.Load() != 4 {
		t.Fatalf("expected 4 requests, got %d", calls.Load())
	}
	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("unexpected delays: %v", delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("expected backoff %v at retry %d, got %v", want[i], i+1, delays[i])
		}
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := fetch.New(5, fetch.WithSleeper(func(time.Duration) {}))
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single request, got %d", calls.Load())
	}
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := fetch.New(5, fetch.WithRetries(3), fetch.WithSleeper(func(time.Duration) {}))
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error after retry budget")
	}
	if calls.Load() != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls.Load())
	}
	if !strings.Contains(err.Error(), "attempts exhausted") {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped 503, got %v", err)
	}
}

func TestGetRetriesConnectionFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	var sleeps int
	client := fetch.New(1, fetch.WithRetries(2), fetch.WithSleeper(func(time.Duration) { sleeps++ }))
	if _, err := client.Get(context.Background(), target); err == nil {
		t.Fatal("expected error for refused connection")
	}
	if sleeps != 2 {
		t.Fatalf("expected 2 retry sleeps, got %d", sleeps)
	}
}

func TestGetEnforcesBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer server.Close()

	client := fetch.New(5, fetch.WithMaxBodyBytes(16))
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for oversize payload")
	}
	if !strings.Contains(err.Error(), "byte limit") {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestGetStopsWhenContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := fetch.New(5, fetch.WithRetries(5), fetch.WithSleeper(func(time.Duration) { cancel() }))
	_, err := client.Get(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestGetRequiresURL(t *testing.T) {
	client := fetch.New(5)
	if _, err := client.Get(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}
