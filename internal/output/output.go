// Package output renders tagging results and training summaries.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/pipeline"
)

// Format defines the output format for results
type Format int

const (
	// plain text, optionally styled for terminals (default)
	Text Format = iota
	// Markdown lists under one heading per document
	Markdown
	// JSON array of documents
	JSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case Text:
		return "Text"
	case Markdown:
		return "Markdown"
	case JSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// ParseFormat maps a format name (text, md, markdown, json) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return Text, nil
	case "md", "markdown":
		return Markdown, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("%w: unknown output format %q", errs.ErrConfiguration, name)
	}
}

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	rankStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Writer renders results in one format.
type Writer struct {
	w      io.Writer
	format Format
	styled bool
}

// NewWriter creates a Writer. styled enables terminal colors for Text output.
func NewWriter(w io.Writer, format Format, styled bool) *Writer {
	return &Writer{w: w, format: format, styled: styled}
}

type jsonKeyphrase struct {
	Phrase string  `json:"phrase"`
	Key    string  `json:"key"`
	Score  float64 `json:"score"`
}

type jsonDocument struct {
	Name       string          `json:"name"`
	Keyphrases []jsonKeyphrase `json:"keyphrases"`
	Error      string          `json:"error,omitempty"`
}

// Results renders the tagging results of a batch.
func (o *Writer) Results(results []pipeline.Tagged) error {
	switch o.format {
	case JSON:
		return o.json(results)
	case Markdown:
		return o.markdown(results)
	default:
		return o.text(results)
	}
}

func (o *Writer) json(results []pipeline.Tagged) error {
	docs := make([]jsonDocument, len(results))
	for i, r := range results {
		doc := jsonDocument{Name: r.Name, Keyphrases: []jsonKeyphrase{}}
		if r.Err != nil {
			doc.Error = r.Err.Error()
		}
		for _, e := range r.Result {
			doc.Keyphrases = append(doc.Keyphrases, jsonKeyphrase{Phrase: e.Phrase, Key: e.Key, Score: e.Score})
		}
		docs[i] = doc
	}

	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func (o *Writer) markdown(results []pipeline.Tagged) error {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", r.Name)
		if r.Err != nil {
			fmt.Fprintf(&b, "> error: %v\n", r.Err)
			continue
		}
		if len(r.Result) == 0 {
			b.WriteString("_no keyphrases_\n")
			continue
		}
		for j, e := range r.Result {
			fmt.Fprintf(&b, "%d. %s (%.3f)\n", j+1, e.Phrase, e.Score)
		}
	}
	_, err := io.WriteString(o.w, b.String())
	return err
}

func (o *Writer) text(results []pipeline.Tagged) error {
	var b strings.Builder
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(o.style(nameStyle, r.Name))
			b.WriteString("\n")
		}
		if r.Err != nil {
			b.WriteString(o.style(errorStyle, "error: "+r.Err.Error()))
			b.WriteString("\n")
			continue
		}

		width := 0
		for _, e := range r.Result {
			width = max(width, len(e.Phrase))
		}
		for j, e := range r.Result {
			rank := o.style(rankStyle, fmt.Sprintf("%2d.", j+1))
			score := o.style(scoreStyle, fmt.Sprintf("%.3f", e.Score))
			fmt.Fprintf(&b, "%s %-*s  %s\n", rank, width, e.Phrase, score)
		}
	}
	_, err := io.WriteString(o.w, b.String())
	return err
}

// Training renders the summary of a training run.
func (o *Writer) Training(meta model.Metadata, algorithm, path string) error {
	if o.format == JSON {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Model     string         `json:"model"`
			Algorithm string         `json:"algorithm"`
			Metadata  model.Metadata `json:"metadata"`
		}{path, algorithm, meta})
	}

	lines := []struct{ label, value string }{
		{"model", path},
		{"algorithm", algorithm},
		{"documents", fmt.Sprintf("%d (%d skipped)", meta.Documents, meta.Skipped)},
		{"examples", fmt.Sprintf("%d (%d below min occurrences)", meta.Examples, meta.Filtered)},
		{"positives", fmt.Sprintf("%d", meta.Positives)},
		{"negatives", fmt.Sprintf("%d", meta.Negatives)},
		{"positive ratio", fmt.Sprintf("%.4f", meta.PositiveRatio)},
	}

	var b strings.Builder
	for _, l := range lines {
		if o.format == Markdown {
			fmt.Fprintf(&b, "- **%s**: %s\n", l.label, l.value)
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", o.style(nameStyle, fmt.Sprintf("%-15s", l.label+":")), l.value)
	}
	_, err := io.WriteString(o.w, b.String())
	return err
}

func (o *Writer) style(s lipgloss.Style, text string) string {
	if !o.styled {
		return text
	}
	return s.Render(text)
}
