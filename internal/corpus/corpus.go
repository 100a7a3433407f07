// Package corpus loads documents and their gold keyphrases.
//
// A corpus is a flat directory. Each document is a .txt or .html file; a file
// with the same base name and a .key extension lists its gold keyphrases, one
// per line. Documents without a .key file load with no gold keyphrases.
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chriscorrea/tagger/internal/chunk"
	"github.com/chriscorrea/tagger/internal/classify"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/extract"
	"github.com/chriscorrea/tagger/internal/fetch"
)

// KeyExt is the extension of gold keyphrase files.
const KeyExt = ".key"

var documentExts = map[string]bool{
	".txt":  true,
	".html": true,
	".htm":  true,
}

// Document is one text with its gold keyphrases.
type Document struct {
	Name string // base name without extension, or the source for fetched documents
	Text string
	Gold []string
}

// Loader turns raw sources into Documents.
type Loader struct {
	// HTML controls how HTML sources become text.
	HTML extract.Options
	// Boilerplate, when set, drops chrome sections from HTML-derived text.
	Boilerplate *classify.Classifier
	// SectionSize bounds sections for boilerplate filtering; 0 uses chunk.DefaultSectionSize.
	SectionSize int
}

// List loads every document in dir in name order. Documents that cannot be
// read are logged and left out; a directory without any loadable document is
// a data error.
func (l Loader) List(ctx context.Context, dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: corpus directory %q does not exist", errs.ErrData, dir)
		}
		return nil, fmt.Errorf("failed to read corpus directory %q: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !documentExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := l.Load(ctx, path)
		if err != nil {
			slog.Warn("Skipping unreadable document", "path", path, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents found in %q", errs.ErrData, dir)
	}
	slog.Debug("Corpus loaded", "dir", dir, "documents", len(docs), "files", len(paths))
	return docs, nil
}

// Load reads a single document from a file, URL, or "-" for standard input.
// Gold keyphrases are read from a sibling .key file for local files only.
func (l Loader) Load(ctx context.Context, source string) (Document, error) {
	raw, err := fetch.Read(ctx, source)
	if err != nil {
		return Document{}, err
	}

	text := string(raw.Body)
	if raw.HTML {
		opts := l.HTML
		if opts.BaseURL == nil {
			opts.BaseURL = raw.BaseURL
		}
		text, err = extract.Text(bytes.NewReader(raw.Body), opts)
		if err != nil {
			return Document{}, fmt.Errorf("failed to extract text from %q: %w", source, err)
		}
		text = l.dropBoilerplate(text)
	}

	doc := Document{Name: source, Text: text}
	if source == "-" || raw.BaseURL != nil {
		return doc, nil
	}

	doc.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	keyPath := strings.TrimSuffix(source, filepath.Ext(source)) + KeyExt
	gold, err := ReadKeys(keyPath)
	if err != nil && !os.IsNotExist(err) {
		return Document{}, err
	}
	doc.Gold = gold
	return doc, nil
}

func (l Loader) dropBoilerplate(text string) string {
	if l.Boilerplate == nil {
		return text
	}
	size := l.SectionSize
	if size <= 0 {
		size = chunk.DefaultSectionSize
	}
	sections := chunk.Sections(text, size)
	kept := l.Boilerplate.Filter(sections)
	if len(kept) < len(sections) {
		slog.Debug("Dropped boilerplate sections", "sections", len(sections), "kept", len(kept))
	}
	return strings.Join(kept, "\n\n")
}

// ReadKeys reads a gold keyphrase file: one keyphrase per line, blank lines
// ignored, duplicates kept once. A missing file returns an error satisfying
// os.IsNotExist.
func ReadKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open keyphrase file %q: %w", path, err)
	}
	defer f.Close()

	var keys []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyphrase file %q: %w", path, err)
	}
	return keys, nil
}
