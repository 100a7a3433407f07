package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/model"
	"github.com/chriscorrea/tagger/internal/pipeline"
	"github.com/chriscorrea/tagger/internal/rank"
)

var sample = []pipeline.Tagged{
	{
		Name: "doc1",
		Result: rank.Result{
			{Key: "neural network", Phrase: "neural networks", Score: 0.91234},
			{Key: "train", Phrase: "training", Score: 0.4},
		},
	},
	{Name: "doc2", Err: errors.New("boom")},
	{Name: "doc3"},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", Text, false},
		{"text", Text, false},
		{"MD", Markdown, false},
		{"markdown", Markdown, false},
		{"json", JSON, false},
		{"xml", Text, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrConfiguration) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrConfiguration", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestFormatString(t *testing.T) {
	if Text.String() != "Text" || Markdown.String() != "Markdown" || JSON.String() != "JSON" || Format(9).String() != "Unknown" {
		t.Error("unexpected Format.String() values")
	}
}

func TestResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, JSON, false).Results(sample); err != nil {
		t.Fatalf("Results() unexpected error: %v", err)
	}

	var docs []jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}
	if docs[0].Keyphrases[0].Phrase != "neural networks" || docs[0].Keyphrases[0].Score != 0.91234 {
		t.Errorf("first keyphrase = %+v", docs[0].Keyphrases[0])
	}
	if docs[1].Error != "boom" {
		t.Errorf("error = %q, want boom", docs[1].Error)
	}
	if docs[2].Keyphrases == nil || len(docs[2].Keyphrases) != 0 {
		t.Errorf("empty result should encode as an empty list, got %v", docs[2].Keyphrases)
	}
}

func TestResultsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, Markdown, false).Results(sample); err != nil {
		t.Fatalf("Results() unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"## doc1", "1. neural networks (0.912)", "2. training (0.400)", "> error: boom", "_no keyphrases_"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestResultsText(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, Text, false).Results(sample[:1]); err != nil {
		t.Fatalf("Results() unexpected error: %v", err)
	}
	want := " 1. neural networks  0.912\n 2. training         0.400\n"
	if buf.String() != want {
		t.Errorf("text output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := NewWriter(&buf, Text, false).Results(sample); err != nil {
		t.Fatalf("Results() unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"doc1\n", "doc2\nerror: boom\n", "doc3\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTraining(t *testing.T) {
	meta := model.Metadata{Documents: 9, Skipped: 1, Examples: 120, Filtered: 30, Positives: 12, Negatives: 108, PositiveRatio: 0.1}

	var buf bytes.Buffer
	if err := NewWriter(&buf, Text, false).Training(meta, model.Logistic, "model.json"); err != nil {
		t.Fatalf("Training() unexpected error: %v", err)
	}
	for _, want := range []string{"model.json", "9 (1 skipped)", "120 (30 below min occurrences)", "0.1000"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("training summary missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := NewWriter(&buf, JSON, false).Training(meta, model.Logistic, "model.json"); err != nil {
		t.Fatalf("Training() unexpected error: %v", err)
	}
	var decoded struct {
		Metadata model.Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Metadata != meta {
		t.Errorf("JSON training summary = %+v, %v", decoded, err)
	}
}
