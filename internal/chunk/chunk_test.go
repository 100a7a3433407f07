package chunk_test

import (
	"strings"
	"testing"

	"github.com/chriscorrea/tagger/internal/chunk"
)

func TestSections(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		maxSize    int
		expectSecs int
	}{
		{"empty string", "", 100, 0},
		{"whitespace only", "   \n\t   ", 100, 0},
		{"single paragraph", "A short paragraph about keyphrases.", 100, 1},
		{"paragraphs packed", "First paragraph.\n\nSecond paragraph.", 100, 1},
		{"paragraphs split at limit", "First paragraph.\n\nSecond paragraph.", 20, 2},
		{"heading starts section", "Intro text.\n\n# Methods\n\nWe train a model.", 200, 2},
		{"oversized sentence split", "First sentence here. Second sentence here. Third sentence here.", 25, 3},
		{"default size", "Some text.", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := chunk.Sections(tt.text, tt.maxSize)
			if len(sections) != tt.expectSecs {
				t.Errorf("Sections() returned %d sections, want %d", len(sections), tt.expectSecs)
				for i, s := range sections {
					t.Errorf("  section %d: %q", i, s)
				}
			}
			for i, s := range sections {
				if strings.TrimSpace(s) == "" {
					t.Errorf("section %d is empty", i)
				}
			}
		})
	}
}

func TestSectionsHeadingStaysWithBody(t *testing.T) {
	sections := chunk.Sections("Intro text.\n\n## Neural Networks\n\nNetworks learn weights.", 500)
	if len(sections) != 2 {
		t.Fatalf("Sections() returned %d sections, want 2", len(sections))
	}
	if !strings.HasPrefix(sections[1], "## Neural Networks") || !strings.Contains(sections[1], "Networks learn weights.") {
		t.Errorf("heading should lead its body, got %q", sections[1])
	}
}

func TestSectionsRespectSize(t *testing.T) {
	text := strings.Repeat("keyphrase extraction ranks phrases ", 50)
	for i, s := range chunk.Sections(text, 60) {
		if len(s) > 60 {
			t.Errorf("section %d exceeds limit: %d bytes", i, len(s))
		}
	}
}
