package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/fetch"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   error
		wantBody  string
		wantHTML  bool
	}{
		{
			name: "text file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "doc.txt")
				if err := os.WriteFile(path, []byte("plain words"), 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantBody: "plain words",
		},
		{
			name: "html file by extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "doc.html")
				if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o644); err != nil {
					t.Fatal(err)
				}
				return path
			},
			wantBody: "<p>hi</p>",
			wantHTML: true,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.txt")
			},
			wantErr: errs.ErrData,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: errs.ErrData,
		},
		{
			name: "http html",
			setupFunc: func(t *testing.T) string {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte("<!DOCTYPE html><html><body><p>served</p></body></html>"))
				}))
				t.Cleanup(server.Close)
				return server.URL + "/page"
			},
			wantBody: "<!DOCTYPE html><html><body><p>served</p></body></html>",
			wantHTML: true,
		},
		{
			name: "http error status",
			setupFunc: func(t *testing.T) string {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
				}))
				t.Cleanup(server.Close)
				return server.URL
			},
			wantErr: errs.ErrData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tt.setupFunc(t)
			raw, err := fetch.Read(context.Background(), source)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Read() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() unexpected error: %v", err)
			}
			if string(raw.Body) != tt.wantBody {
				t.Errorf("Read() body = %q, want %q", raw.Body, tt.wantBody)
			}
			if raw.HTML != tt.wantHTML {
				t.Errorf("Read() HTML = %v, want %v", raw.HTML, tt.wantHTML)
			}
			if strings.HasPrefix(source, "http") && raw.BaseURL == nil {
				t.Error("Read() should set BaseURL for URL sources")
			}
		})
	}
}

func TestReadCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fetch.Read(ctx, server.URL); !errors.Is(err, errs.ErrCollaboratorUnavailable) {
		t.Errorf("Read() with cancelled context error = %v, want ErrCollaboratorUnavailable", err)
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"page.html", "anything", true},
		{"page.HTM", "anything", true},
		{"notes.txt", "<html><body>x</body></html>", false},
		{"-", "<!DOCTYPE html><html></html>", true},
		{"-", "just some words", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fetch.IsHTML(tt.name, []byte(tt.body)); got != tt.want {
				t.Errorf("IsHTML(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
