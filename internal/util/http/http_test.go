package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/jmylchreest/palettesniffer/internal/version"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != version.UserAgent() {
			t.Errorf("User-Agent = %q, want %q", got, version.UserAgent())
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Error("custom header missing")
		}
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	data, err := Fetch(context.Background(), server.URL, FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Fetch() = %q, want hello", data)
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL, FetchOptions{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusForbidden {
		t.Errorf("Fetch() error = %v, want StatusError 403", err)
	}
}

func TestDoPostsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		w.Write(body)
	}))
	defer server.Close()

	resp, err := Do(context.Background(), server.URL, FetchOptions{Body: []byte(`{"url":"x"}`)})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(resp.Body) != `{"url":"x"}` || resp.ContentType != "text/plain" {
		t.Errorf("Do() = %q (%s)", resp.Body, resp.ContentType)
	}
}

func TestDoBodySizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"under limit", 100, false},
		{"exactly at limit", 64, false},
		{"over limit", 63, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Do(context.Background(), server.URL, FetchOptions{MaxBodySize: tt.limit})
			if tt.wantErr {
				if !errors.Is(err, ErrBodyTooLarge) {
					t.Fatalf("Do() error = %v, want ErrBodyTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if len(resp.Body) != 64 {
				t.Errorf("body length = %d, want 64", len(resp.Body))
			}
		})
	}
}

func TestFetchTimeoutIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL, FetchOptions{Timeout: 50 * time.Millisecond})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() error = %v, want NetworkError", err)
	}
	if netErr.Name() != "NetworkError" {
		t.Errorf("Name() = %s", netErr.Name())
	}
}

func TestFetchTextDecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("caf\xe9"))
	}))
	defer server.Close()

	text, err := FetchText(context.Background(), server.URL, FetchOptions{})
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	if text != "café" {
		t.Errorf("FetchText() = %q, want café", text)
	}
}

func TestFetchHonoursLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	opts := FetchOptions{Limiter: limiter, Timeout: 100 * time.Millisecond}
	if _, err := Fetch(context.Background(), server.URL, opts); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	_, err := Fetch(context.Background(), server.URL, opts)
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("second Fetch() error = %v, want rate limit wait failure", err)
	}
}
