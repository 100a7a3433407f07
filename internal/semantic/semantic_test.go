package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chriscorrea/tagger/internal/errs"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/generality", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		score := 0.25
		if req["phrase"] == "science" {
			score = 1.7 // out of range on purpose
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": score})
	})
	mux.HandleFunc("/related", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": 0.6})
	})
	mux.HandleFunc("/slow/generality", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]float64{"score": 0.5})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(Config{}); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("NewClient() error = %v, want ErrConfiguration", err)
	}
}

func TestClientGenerality(t *testing.T) {
	srv := newTestServer(t)
	c, err := NewClient(Config{URL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}

	got, err := c.Generality(context.Background(), "neural network")
	if err != nil {
		t.Fatalf("Generality() unexpected error: %v", err)
	}
	if got != 0.25 {
		t.Errorf("Generality() = %v, want 0.25", got)
	}

	got, _ = c.Generality(context.Background(), "science")
	if got != 1 {
		t.Errorf("Generality() should clamp to 1, got %v", got)
	}
}

func TestClientRelated(t *testing.T) {
	srv := newTestServer(t)

	authed, _ := NewClient(Config{URL: srv.URL, APIKey: "secret"})
	got, err := authed.Related(context.Background(), "neural network", "deep learning")
	if err != nil {
		t.Fatalf("Related() unexpected error: %v", err)
	}
	if got != 0.6 {
		t.Errorf("Related() = %v, want 0.6", got)
	}

	anonymous, _ := NewClient(Config{URL: srv.URL})
	if _, err := anonymous.Related(context.Background(), "a", "b"); !errors.Is(err, errs.ErrCollaboratorUnavailable) {
		t.Errorf("Related() error = %v, want ErrCollaboratorUnavailable", err)
	}
}

func TestClientTimeout(t *testing.T) {
	srv := newTestServer(t)
	c, _ := NewClient(Config{URL: srv.URL + "/slow", Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := c.Generality(context.Background(), "anything")
	if !errors.Is(err, errs.ErrCollaboratorUnavailable) {
		t.Errorf("Generality() error = %v, want ErrCollaboratorUnavailable", err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Error("request was not bounded by the timeout")
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	c, _ := NewClient(Config{URL: url})
	if err := c.Ping(context.Background()); !errors.Is(err, errs.ErrCollaboratorUnavailable) {
		t.Errorf("Ping() error = %v, want ErrCollaboratorUnavailable", err)
	}
}
