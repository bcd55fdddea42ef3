package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string, maxAttempts int) *Client {
	return NewClient(ClientOptions{
		APIKey:      "test-key",
		Model:       "test-model",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxAttempts: maxAttempts,
		BackoffBase: time.Millisecond,
	})
}

func candidateResponse(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGenerateSuccess(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, candidateResponse("generated article"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	text, err := c.Generate(context.Background(), "write something")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "generated article" {
		t.Errorf("unexpected text: %q", text)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestGenerateRetriesOnOverloadThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"code":503,"status":"UNAVAILABLE","message":"The model is overloaded"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	_, err := c.Generate(context.Background(), "write something")
	if !errors.Is(err, ErrAIServiceUnavailable) {
		t.Fatalf("expected ErrAIServiceUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestGenerateRecoversAfterOverload(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"code":503,"status":"UNAVAILABLE","message":"overloaded"}}`)
			return
		}
		fmt.Fprint(w, candidateResponse("second try"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	text, err := c.Generate(context.Background(), "write something")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "second try" {
		t.Errorf("unexpected text: %q", text)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestGenerateNoRetryOnBadRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"prompt too long"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	_, err := c.Generate(context.Background(), "write something")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if calls != 1 {
		t.Errorf("400 must not be retried, got %d attempts", calls)
	}
}

func TestGenerateNoRetryOnForbidden(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"status":"PERMISSION_DENIED","message":"key revoked"}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	_, err := c.Generate(context.Background(), "write something")
	if !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}
	if calls != 1 {
		t.Errorf("403 must not be retried, got %d attempts", calls)
	}
}

func TestGenerateEmptyCandidatesIsRetryable(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	_, err := c.Generate(context.Background(), "write something")
	if !errors.Is(err, ErrAIServiceUnavailable) {
		t.Fatalf("expected ErrAIServiceUnavailable, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestBackoffCapped(t *testing.T) {
	c := NewClient(ClientOptions{BackoffBase: time.Second})

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{8, 10 * time.Second},
	}
	for _, tc := range cases {
		if got := c.backoff(tc.attempt); got != tc.want {
			t.Errorf("backoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestGenerateContextCancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{
		BaseURL:     srv.URL,
		Model:       "test-model",
		MaxAttempts: 3,
		BackoffBase: time.Minute,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.Generate(ctx, "write something")
	if !errors.Is(err, ErrAIServiceUnavailable) {
		t.Fatalf("expected ErrAIServiceUnavailable, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancellation did not interrupt the backoff wait")
	}
}
