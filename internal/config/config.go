// Package config loads the tagger configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/features"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/pipeline"
)

// DefaultAPIKeyEnv names the variable holding the knowledge-service API key.
const DefaultAPIKeyEnv = "TAGGER_SEMANTIC_API_KEY"

// PhraseConfig bounds candidate phrase length in tokens.
type PhraseConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// SemanticConfig configures the optional knowledge service.
type SemanticConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Policy      string `yaml:"policy"` // "omit" or "fail"
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// HTMLConfig controls how HTML documents become text.
type HTMLConfig struct {
	Selector          string `yaml:"selector"`
	IncludeAll        bool   `yaml:"include_all"`
	FilterBoilerplate bool   `yaml:"filter_boilerplate"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Language    string           `yaml:"language"`
	Stopwords   []string         `yaml:"stopwords,omitempty"`
	Phrase      PhraseConfig     `yaml:"phrase"`
	MinNumOccur int              `yaml:"min_num_occur"`
	TopK        int              `yaml:"top_k"`
	Workers     int              `yaml:"workers"`
	Features    features.Options `yaml:"features"`
	Model       model.Options    `yaml:"model"`
	Semantic    SemanticConfig   `yaml:"semantic"`
	HTML        HTMLConfig       `yaml:"html"`
	Output      string           `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	p := pipeline.DefaultConfig()
	return &AppConfig{
		Language:    p.Language,
		Phrase:      PhraseConfig{Min: p.MinPhraseLength, Max: p.MaxPhraseLength},
		MinNumOccur: p.MinNumOccur,
		TopK:        p.TopK,
		Workers:     p.Workers,
		Features:    p.Features,
		Model:       p.Model,
		Semantic: SemanticConfig{
			APIKeyEnv:   DefaultAPIKeyEnv,
			Policy:      string(pipeline.SemanticOmit),
			TimeoutSecs: int(p.Features.SemanticTimeout / time.Second),
		},
		HTML:   HTMLConfig{FilterBoilerplate: true},
		Output: "text",
	}
}

// Load reads the YAML file at path over the defaults; keys missing from the
// file keep their default values.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file %q does not exist", errs.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %q: %v", errs.ErrConfiguration, path, err)
	}
	if cfg.Semantic.APIKeyEnv == "" {
		cfg.Semantic.APIKeyEnv = DefaultAPIKeyEnv
	}
	return cfg, nil
}

// LoadDefault tries ./tagger.yaml, then ~/.config/tagger/config.yaml, and
// falls back to the built-in defaults. It returns the path used, if any.
func LoadDefault() (*AppConfig, string, error) {
	candidates := []string{"tagger.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "tagger", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return Default(), "", nil
}

// Save writes cfg as YAML, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv loads variables from .env files into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load environment file %q: %w", path, err)
		}
	}
	return nil
}

// APIKey returns the knowledge-service API key from the environment.
func (c *AppConfig) APIKey() string {
	return os.Getenv(c.Semantic.APIKeyEnv)
}

// Pipeline returns the engine configuration described by c.
func (c *AppConfig) Pipeline() pipeline.Config {
	opts := c.Features
	if c.Semantic.TimeoutSecs > 0 {
		opts.SemanticTimeout = time.Duration(c.Semantic.TimeoutSecs) * time.Second
	}
	return pipeline.Config{
		Language:        c.Language,
		Stopwords:       c.Stopwords,
		MinPhraseLength: c.Phrase.Min,
		MaxPhraseLength: c.Phrase.Max,
		MinNumOccur:     c.MinNumOccur,
		Features:        opts,
		Model:           c.Model,
		Semantic:        pipeline.SemanticPolicy(c.Semantic.Policy),
		TopK:            c.TopK,
		Workers:         c.Workers,
	}
}
