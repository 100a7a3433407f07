package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/pipeline"
)

func TestDefaultMatchesPipeline(t *testing.T) {
	got := Default().Pipeline()
	want := pipeline.DefaultConfig()

	if got.Language != want.Language || got.MinPhraseLength != want.MinPhraseLength ||
		got.MaxPhraseLength != want.MaxPhraseLength || got.MinNumOccur != want.MinNumOccur ||
		got.TopK != want.TopK || got.Semantic != want.Semantic {
		t.Errorf("Default().Pipeline() = %+v, want %+v", got, want)
	}
	if got.Features != want.Features {
		t.Errorf("features = %+v, want %+v", got.Features, want.Features)
	}
	if _, err := pipeline.New(got); err != nil {
		t.Errorf("default configuration should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagger.yaml")
	content := `
language: french
phrase:
  max: 3
min_num_occur: 1
features:
  set:
    node_degree: false
  semantic_timeout: 5s
model:
  algorithm: naive_bayes
semantic:
  url: http://localhost:9000
  policy: fail
html:
  selector: article
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"language", cfg.Language, "french"},
		{"phrase max", cfg.Phrase.Max, 3},
		{"phrase min keeps default", cfg.Phrase.Min, 1},
		{"min occurrences", cfg.MinNumOccur, 1},
		{"node degree disabled", cfg.Features.Set.NodeDegree, false},
		{"frequency keeps default", cfg.Features.Set.Frequency, true},
		{"semantic timeout", cfg.Features.SemanticTimeout, 5 * time.Second},
		{"algorithm", cfg.Model.Algorithm, model.NaiveBayes},
		{"iterations keep default", cfg.Model.Iterations, model.DefaultOptions().Iterations},
		{"semantic url", cfg.Semantic.URL, "http://localhost:9000"},
		{"semantic policy", cfg.Semantic.Policy, "fail"},
		{"api key env default", cfg.Semantic.APIKeyEnv, DefaultAPIKeyEnv},
		{"selector", cfg.HTML.Selector, "article"},
		{"boilerplate keeps default", cfg.HTML.FilterBoilerplate, true},
		{"output keeps default", cfg.Output, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	p := cfg.Pipeline()
	if p.Semantic != pipeline.SemanticFail || p.MaxPhraseLength != 3 || p.Language != "french" {
		t.Errorf("Pipeline() = %+v", p)
	}
	if p.Features.SemanticTimeout != 2*time.Second {
		t.Errorf("semantic timeout_secs should override features timeout, got %v", p.Features.SemanticTimeout)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("Load() on missing file error = %v, want ErrConfiguration", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("phrase: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("Load() on invalid YAML error = %v, want ErrConfiguration", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.TopK = 7
	cfg.Features.Set.Semantic = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if loaded.TopK != 7 || !loaded.Features.Set.Semantic || loaded.Features != cfg.Features {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("TAGGER_TEST_KEY=secret-value\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAGGER_TEST_KEY", "")
	os.Unsetenv("TAGGER_TEST_KEY")

	if err := LoadEnv(envFile, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv() unexpected error: %v", err)
	}

	cfg := Default()
	cfg.Semantic.APIKeyEnv = "TAGGER_TEST_KEY"
	if got := cfg.APIKey(); got != "secret-value" {
		t.Errorf("APIKey() = %q, want %q", got, "secret-value")
	}
}
