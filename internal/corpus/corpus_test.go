package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chriscorrea/tagger/internal/classify"
	"github.com/chriscorrea/tagger/internal/errs"
	"github.com/chriscorrea/tagger/internal/extract"
	"github.com/chriscorrea/tagger/internal/lang"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.txt":     "Decision trees split data on features.",
		"b.key":     "decision trees\n\n  feature selection \ndecision trees\n",
		"a.txt":     "Neural networks learn from data.",
		"a.key":     "neural networks\n",
		"c.html":    `<html><body><article><h1>Support Vector Machines</h1><p>Margins separate classes.</p></article></body></html>`,
		"notes.md":  "ignored",
		"orphan.key": "no document",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := (Loader{}).List(context.Background(), dir)
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}

	var gotNames []string
	for _, d := range docs {
		gotNames = append(gotNames, d.Name)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(gotNames, want) {
		t.Fatalf("List() names = %v, want %v", gotNames, want)
	}

	if want := []string{"neural networks"}; !reflect.DeepEqual(docs[0].Gold, want) {
		t.Errorf("a gold = %v, want %v", docs[0].Gold, want)
	}
	if want := []string{"decision trees", "feature selection"}; !reflect.DeepEqual(docs[1].Gold, want) {
		t.Errorf("b gold = %v, want %v", docs[1].Gold, want)
	}
	if docs[2].Gold != nil {
		t.Errorf("c should have no gold keyphrases, got %v", docs[2].Gold)
	}
	if !strings.Contains(docs[2].Text, "Margins separate classes") || strings.Contains(docs[2].Text, "<p>") {
		t.Errorf("HTML document text not extracted: %q", docs[2].Text)
	}
}

func TestListErrors(t *testing.T) {
	if _, err := (Loader{}).List(context.Background(), filepath.Join(t.TempDir(), "missing")); !errors.Is(err, errs.ErrData) {
		t.Errorf("List() on missing dir error = %v, want ErrData", err)
	}

	empty := t.TempDir()
	writeFiles(t, empty, map[string]string{"only.key": "orphan"})
	if _, err := (Loader{}).List(context.Background(), empty); !errors.Is(err, errs.ErrData) {
		t.Errorf("List() on empty corpus error = %v, want ErrData", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "text"})
	if _, err := (Loader{}).List(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("List() with cancelled context error = %v, want context.Canceled", err)
	}
}

func TestLoadDropsBoilerplate(t *testing.T) {
	english, err := lang.New("english")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"page.html": `<html><body>
<p>Home | About | Login | Subscribe</p>
<p>Neural networks learn representations from data through gradient descent.</p>
<p>Training deep networks needs careful initialization and regularization.</p>
<p>Convolutional layers reuse weights across spatial positions of images.</p>
<p>Copyright 2026. All rights reserved.</p>
</body></html>`,
	})

	loader := Loader{
		HTML:        extract.Options{IncludeAll: true},
		Boilerplate: classify.New(english),
		SectionSize: 80,
	}
	doc, err := loader.Load(context.Background(), filepath.Join(dir, "page.html"))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if strings.Contains(doc.Text, "Subscribe") || strings.Contains(doc.Text, "Copyright") {
		t.Errorf("boilerplate should be dropped, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "gradient descent") {
		t.Errorf("content should be kept, got %q", doc.Text)
	}
}

func TestReadKeys(t *testing.T) {
	if _, err := ReadKeys(filepath.Join(t.TempDir(), "none.key")); !os.IsNotExist(err) {
		t.Errorf("ReadKeys() on missing file error = %v, want not-exist", err)
	}
}
