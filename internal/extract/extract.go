// Package extract turns HTML documents into plain text for keyphrase
// extraction. Headings survive as Markdown "#" lines so section chunking can
// still see them; links, images and inline emphasis are flattened to their
// text.
package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/chriscorrea/tagger/internal/errs"
)

// Options controls which part of an HTML page becomes document text.
type Options struct {
	// Selector restricts extraction to matching elements and overrides IncludeAll.
	Selector string
	// IncludeAll converts the whole page instead of the readability main content.
	IncludeAll bool
	// BaseURL gives readability context for relative links; may be nil.
	BaseURL *url.URL
}

// Text extracts document text from HTML content.
func Text(content io.Reader, opts Options) (string, error) {
	if opts.Selector != "" {
		return extractWithSelector(content, opts.Selector)
	}
	if opts.IncludeAll {
		return convertAll(content)
	}
	return extractMainContent(content, opts.BaseURL)
}

func extractMainContent(content io.Reader, baseURL *url.URL) (string, error) {
	if baseURL == nil {
		baseURL = &url.URL{}
	}

	article, err := readability.FromReader(content, baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract main content: %v", errs.ErrData, err)
	}

	text, err := convert(article.Content)
	if err != nil {
		return "", err
	}
	if title := strings.TrimSpace(article.Title); title != "" && !strings.Contains(text, title) {
		text = "# " + title + "\n\n" + text
	}
	return text, nil
}

func extractWithSelector(content io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse HTML: %v", errs.ErrData, err)
	}

	selection := doc.Find(selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: no elements found matching selector %q", errs.ErrData, selector)
	}

	var parts []string
	selection.Each(func(_ int, s *goquery.Selection) {
		if html, err := goquery.OuterHtml(s); err == nil {
			parts = append(parts, html)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: failed to extract HTML from selection %q", errs.ErrData, selector)
	}

	return convert(strings.Join(parts, "\n"))
}

func convertAll(content io.Reader) (string, error) {
	b, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML content: %w", err)
	}
	return convert(string(b))
}

// plainText keeps only the inner text of inline elements
func plainText(content string, _ *goquery.Selection, _ *md.Options) *string {
	return md.String(content)
}

func dropped(string, *goquery.Selection, *md.Options) *string {
	return md.String("")
}

func convert(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Remove("script", "style", "noscript", "svg", "form")
	converter.AddRules(
		md.Rule{Filter: []string{"a", "strong", "b", "em", "i", "code", "span"}, Replacement: plainText},
		md.Rule{Filter: []string{"img"}, Replacement: dropped},
	)

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("%w: failed to convert HTML: %v", errs.ErrData, err)
	}

	cleaned := strings.TrimSpace(markdown)
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}
	return cleaned, nil
}
