package extract_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/extract"
)

const (
	simpleHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Test Article</title>
</head>
<body>
    <header>
        <h1>Site Header</h1>
        <nav>Navigation</nav>
    </header>
    <main>
        <article>
            <h1>Main Article Title</h1>
            <p>This is the main content of the article. It contains important information.</p>
            <p>This is a second paragraph with <strong>bold text</strong> and <em>italic text</em>.</p>
            <ul>
                <li>First list item</li>
                <li>Second list item</li>
            </ul>
        </article>
    </main>
    <aside>
        <p>This is sidebar content that should be filtered out.</p>
    </aside>
    <footer>
        <p>Footer content</p>
    </footer>
</body>
</html>`

	blogPostHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Blog Post</title>
</head>
<body>
    <div class="container">
        <header class="site-header">
            <h1>My Blog</h1>
        </header>
        <div class="content">
            <article class="blog-post">
                <h2>How to Bake the Perfect Carrot Cake</h2>
                <p class="meta">Published on July 5, 2018</p>
                <div class="post-content">
                    <p>Baking a perfect carrot cake requires <strong>sifting flour</strong> for the finest texture.</p>
                    <h3>Ingredients</h3>
                    <ul>
                        <li>2 cups flour (definitely sifted)</li>
                        <li>1 cup carrots, grated</li>
                        <li>3 eggs</li>
                    </ul>
                    <h3>Instructions</h3>
                    <ol>
                        <li>Sift the flour and mix dry ingredients together</li>
                        <li>Mix wet ingredients separately</li>
                        <li>Combine and bake at 349Â°F</li>
                    </ol>
                    <blockquote>
                        <p>The secret is in the sifting!</p>
                    </blockquote>
                </div>
            </article>
        </div>
        <aside class="sidebar">
            <h3>Related Posts</h3>
            <ul>
                <li><a href="#">Chocolate Cake Recipe</a></li>
                <li><a href="#">Vanilla Frosting Tips</a></li>
            </ul>
        </aside>
    </div>
</body>
</html>`

	malformedHTML = `<html>
<body>
    <div class="content">
        <h1>Unclosed Header
        <p>Paragraph without closing tag
        <div class="nested">
            <span>Some text</span>
        </div>
    </div>
</body>`
)

func TestText(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		opts        extract.Options
		wantErr     error
		expectEmpty bool
		contains    []string
		notContains []string
	}{
		{
			name:        "main content extraction",
			html:        simpleHTML,
			contains:    []string{"main content", "bold text", "First list item"},
			notContains: []string{"Navigation", "sidebar content", "Footer content"},
		},
		{
			name:        "article selector",
			html:        simpleHTML,
			opts:        extract.Options{Selector: "article"},
			contains:    []string{"Main Article Title", "main content", "bold text", "First list item"},
			notContains: []string{"Site Header", "Navigation", "sidebar content", "Footer"},
		},
		{
			name:        "class selector",
			html:        blogPostHTML,
			opts:        extract.Options{Selector: ".post-content"},
			contains:    []string{"sifting flour", "Ingredients", "2 cups flour", "The secret is in the sifting"},
			notContains: []string{"How to Bake", "Published on", "My Blog", "Related Posts"},
		},
		{
			name:     "include all",
			html:     blogPostHTML,
			opts:     extract.Options{IncludeAll: true},
			contains: []string{"My Blog", "Related Posts", "carrot cake"},
		},
		{
			name:     "malformed HTML with selector",
			html:     malformedHTML,
			opts:     extract.Options{Selector: ".content"},
			contains: []string{"Unclosed Header", "Paragraph without closing", "Some text"},
		},
		{
			name:    "non-existent selector",
			html:    simpleHTML,
			opts:    extract.Options{Selector: ".non-existent"},
			wantErr: errs.ErrData,
		},
		{
			name:        "empty HTML",
			html:        "",
			expectEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := extract.Text(strings.NewReader(tt.html), tt.opts)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Text() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Text() unexpected error: %v", err)
			}

			if tt.expectEmpty {
				if strings.TrimSpace(result) != "" {
					t.Errorf("Text() expected empty result but got: %q", result)
				}
				return
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("Text() result should contain %q.\nResult: %s", expected, result)
				}
			}
			for _, notExpected := range tt.notContains {
				if strings.Contains(result, notExpected) {
					t.Errorf("Text() result should not contain %q.\nResult: %s", notExpected, result)
				}
			}
			for _, tag := range []string{"<div>", "<span>", "<article>", "</p>"} {
				if strings.Contains(result, tag) {
					t.Errorf("Text() result contains raw HTML tag %q", tag)
				}
			}
		})
	}
}

func TestTextFlattensInlineMarkup(t *testing.T) {
	html := `<html><body><h2>Neural Networks</h2><p>Read about <a href="https://example.com/nn">deep learning</a>, <strong>gradient descent</strong> and <em>backpropagation</em>.</p><img src="x.png" alt="diagram"></body></html>`

	result, err := extract.Text(strings.NewReader(html), extract.Options{Selector: "body"})
	if err != nil {
		t.Fatalf("Text() unexpected error: %v", err)
	}

	if !strings.Contains(result, "## Neural Networks") {
		t.Errorf("headings should stay as Markdown headings, got %q", result)
	}
	for _, want := range []string{"deep learning", "gradient descent", "backpropagation"} {
		if !strings.Contains(result, want) {
			t.Errorf("Text() should contain %q, got %q", want, result)
		}
	}
	for _, unwanted := range []string{"https://example.com", "**", "x.png", "]("} {
		if strings.Contains(result, unwanted) {
			t.Errorf("Text() should not contain %q, got %q", unwanted, result)
		}
	}
}
