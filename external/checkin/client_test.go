package checkin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/team-balancer/internal/platform/logging"
	"github.com/riskibarqy/team-balancer/internal/platform/resilience"
	"github.com/riskibarqy/team-balancer/internal/usecase"
)

func newTestClient(baseURL string, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	client := NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "secret-token",
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	client.retryDelay = func(int) time.Duration { return time.Millisecond }
	return client
}

func TestClient_FetchRoster_MapsEntries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orgs/org-senayan-weekend/checkins" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2026-03-07" {
			t.Errorf("unexpected date query %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected accept header %q", got)
		}
		fmt.Fprint(w, `{"data":[
			{"player_id":"p-arief","name":"Arief","skill":4,"age":31,"main_position":"GK"},
			{"player_id":"p-bima","name":" Bima ","age":27,"main_position":"mid","alt_position":"DF"}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{})

	entries, err := client.FetchRoster(context.Background(), "org-senayan-weekend", "2026-03-07")
	if err != nil {
		t.Fatalf("FetchRoster failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got=%d", len(entries))
	}

	first := entries[0]
	if first.ID != "p-arief" || first.Name != "Arief" || first.Skill != 4 || first.Age != 31 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.MainPosition != "GK" || first.AltPosition != "" {
		t.Fatalf("unexpected first entry positions: %+v", first)
	}

	second := entries[1]
	if second.Name != "Bima" {
		t.Fatalf("expected trimmed name, got=%q", second.Name)
	}
	if second.Skill != 0 {
		t.Fatalf("expected absent skill to stay zero, got=%d", second.Skill)
	}
	if second.MainPosition != "mid" || second.AltPosition != "DF" {
		t.Fatalf("unexpected second entry positions: %+v", second)
	}
}

func TestClient_FetchRoster_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data":[{"player_id":"p-1","age":20,"skill":3,"main_position":"ST"}]}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2, resilience.CircuitBreakerConfig{})

	entries, err := client.FetchRoster(context.Background(), "org-1", "2026-03-07")
	if err != nil {
		t.Fatalf("FetchRoster failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got=%d", len(entries))
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got=%d", got)
	}
}

func TestClient_FetchRoster_TransientFailureMapsToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 1, resilience.CircuitBreakerConfig{})

	_, err := client.FetchRoster(context.Background(), "org-1", "2026-03-07")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got=%v", err)
	}
}

func TestClient_FetchRoster_StopsOnNonRetryableStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 3, resilience.CircuitBreakerConfig{})

	_, err := client.FetchRoster(context.Background(), "org-unknown", "2026-03-07")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("404 must not read as dependency outage, got=%v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single request, got=%d", got)
	}
}

func TestClient_FetchRoster_CircuitOpenShortCircuits(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, err := client.FetchRoster(context.Background(), "org-1", "2026-03-07"); err == nil {
		t.Fatal("expected first call to fail")
	}

	_, err := client.FetchRoster(context.Background(), "org-1", "2026-03-07")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable from open circuit, got=%v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("open circuit must not reach the server, hits=%d", got)
	}
}

func TestClient_FetchRoster_MissingBaseURLUnavailable(t *testing.T) {
	t.Parallel()

	client := newTestClient("", 0, resilience.CircuitBreakerConfig{})

	_, err := client.FetchRoster(context.Background(), "org-1", "2026-03-07")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got=%v", err)
	}
}

func TestSanitizeSensitiveText_RedactsToken(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText("dial failed for token secret-token on host", "secret-token")
	if strings.Contains(got, "secret-token") {
		t.Fatalf("token leaked: %q", got)
	}
	if !strings.Contains(got, "REDACTED") {
		t.Fatalf("expected redaction marker, got=%q", got)
	}
}

func TestBuildCurlPreview_MasksAuthorization(t *testing.T) {
	t.Parallel()

	preview := buildCurlPreview("https://checkin.internal/v1/orgs/org-1/checkins?date=2026-03-07", true)
	if !strings.HasPrefix(preview, "curl ") {
		t.Fatalf("unexpected preview prefix: %q", preview)
	}
	if !strings.Contains(preview, "Authorization: Bearer ***") {
		t.Fatalf("expected masked authorization header, got=%q", preview)
	}
	if strings.Contains(preview, "secret") {
		t.Fatalf("preview must not carry secrets: %q", preview)
	}
}

func TestValidateHTTPBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "valid https", in: "https://checkin.internal/", want: "https://checkin.internal"},
		{name: "valid http", in: "http://localhost:8090", want: "http://localhost:8090"},
		{name: "empty", in: "   ", wantErr: true},
		{name: "bad scheme", in: "ftp://checkin.internal", wantErr: true},
		{name: "missing host", in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := validateHTTPBaseURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got=%q", tt.want, got)
			}
		})
	}
}
