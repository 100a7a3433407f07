package classify

import (
	"math"
	"testing"

	"github.com/chriscorrea/tagger/internal/lang"
)

func newEnglish(t *testing.T) *Classifier {
	t.Helper()
	english, err := lang.New("english")
	if err != nil {
		t.Fatalf("lang.New() unexpected error: %v", err)
	}
	return New(english)
}

func TestIsBoilerplate(t *testing.T) {
	c := newEnglish(t)

	tests := []struct {
		name    string
		section string
		index   int
		total   int
		want    bool
	}{
		{
			name:    "empty section",
			section: "   \n\t ",
			index:   0,
			total:   1,
			want:    true,
		},
		{
			name:    "copyright footer at end",
			section: "Copyright 2026. All rights reserved. This text may not be reproduced without permission.",
			index:   9,
			total:   10,
			want:    true,
		},
		{
			name:    "navigation header at beginning",
			section: "Home | About | Profile | Share | Contents | Navigation | Login",
			index:   0,
			total:   10,
			want:    true,
		},
		{
			name:    "content in the middle",
			section: "The carrot cake recipe requires sifting flour through a fine mesh sieve to achieve the perfect texture.",
			index:   5,
			total:   10,
			want:    false,
		},
		{
			name:    "one marker among many content words",
			section: "The baker carefully sifted confectioner sugar for the icing, and this page describes each careful step of carrot cake preparation.",
			index:   3,
			total:   8,
			want:    false,
		},
		{
			name:    "index out of range",
			section: "Copyright",
			index:   4,
			total:   3,
			want:    false,
		},
		{
			name:    "no sections",
			section: "Copyright",
			index:   0,
			total:   0,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsBoilerplate(tt.section, tt.index, tt.total); got != tt.want {
				t.Errorf("IsBoilerplate(%q, %d, %d) = %v, want %v", tt.section, tt.index, tt.total, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	c := newEnglish(t)

	sections := []string{
		"Home | About | Login | Subscribe",
		"Neural networks learn representations from data through gradient descent.",
		"Training deep networks needs careful initialization and regularization.",
		"Convolutional layers share weights across spatial positions of images.",
		"Copyright 2026. All rights reserved.",
	}

	kept := c.Filter(sections)
	if len(kept) != 3 {
		t.Fatalf("Filter() kept %d sections, want 3: %q", len(kept), kept)
	}
	if kept[0] != sections[1] || kept[2] != sections[3] {
		t.Errorf("Filter() should keep content sections in order, got %q", kept)
	}

	allChrome := []string{"Home | Login", "Privacy policy", "Terms"}
	if got := c.Filter(allChrome); len(got) != len(allChrome) {
		t.Errorf("Filter() on all-boilerplate input should return it unchanged, got %q", got)
	}
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		index, total int
		want         float64
	}{
		{0, 2, 0.5},
		{0, 11, 0.1},
		{10, 11, 0.1},
		{5, 11, 0.33},
	}
	for _, tt := range tests {
		if got := threshold(tt.index, tt.total); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("threshold(%d, %d) = %v, want %v", tt.index, tt.total, got, tt.want)
		}
	}
}
