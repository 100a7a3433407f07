// Package store persists a trained model together with the corpus statistics
// and pipeline configuration it was trained under, as one JSON file.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/stats"
)

const (
	format  = "tagger-model"
	version = 1
)

// Bundle is everything needed to tag with a trained model.
type Bundle struct {
	Model model.Model
	Stats *stats.Table
	// Config is the encoded pipeline configuration; the pipeline owns its schema.
	Config json.RawMessage
}

// file is the on-disk layout
type file struct {
	Format  string          `json:"format"`
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Config  json.RawMessage `json:"config"`
	Stats   *stats.Table    `json:"stats"`
	Model   json.RawMessage `json:"model"`
}

// Save writes b to path, replacing any existing file only once the new one is
// completely written.
func Save(path string, b Bundle) error {
	if b.Model == nil || b.Stats == nil {
		return fmt.Errorf("%w: cannot save a bundle without model and statistics", errs.ErrConfiguration)
	}

	modelData, err := b.Model.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	config := b.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}

	data, err := json.MarshalIndent(file{
		Format:  format,
		Version: version,
		SavedAt: time.Now().UTC(),
		Config:  config,
		Stats:   b.Stats,
		Model:   modelData,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model file: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model file into place: %w", err)
	}

	slog.Debug("Model saved", "path", path, "algorithm", b.Model.Algorithm(), "features", len(b.Model.Features()), "bytes", len(data))
	return nil
}

// Load reads a bundle written by Save. A file that is not a model file or was
// written by an incompatible version is a model mismatch.
func Load(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Bundle{}, fmt.Errorf("%w: model file %q does not exist", errs.ErrData, path)
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read model file %q: %w", path, err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Bundle{}, fmt.Errorf("%w: failed to decode model file %q: %v", errs.ErrModelMismatch, path, err)
	}
	if f.Format != format {
		return Bundle{}, fmt.Errorf("%w: %q is not a model file", errs.ErrModelMismatch, path)
	}
	if f.Version != version {
		return Bundle{}, fmt.Errorf("%w: model file version %d, expected %d", errs.ErrModelMismatch, f.Version, version)
	}
	if f.Stats == nil || len(f.Model) == 0 {
		return Bundle{}, fmt.Errorf("%w: model file %q is incomplete", errs.ErrModelMismatch, path)
	}

	m, err := model.Deserialize(f.Model)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to load model from %q: %w", path, err)
	}

	slog.Debug("Model loaded", "path", path, "algorithm", m.Algorithm(), "savedAt", f.SavedAt)
	return Bundle{Model: m, Stats: f.Stats, Config: f.Config}, nil
}
