package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/quire/internal/config"
	"github.com/tsawler/quire/inspect"
	"github.com/tsawler/quire/markup"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// writeTestProject lays out a small project and returns the project file path.
func writeTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"cover.png":         encodePNG(t, 60, 90),
		"img/pic.png":       encodePNG(t, 2, 2),
		"style.css":         []byte("p { margin: 0; }"),
		"chapters/one.html": []byte(`<p>Hello <img src="img/pic.png" alt="pic"></p>`),
		"chapters/two.html": []byte(`<p>Goodbye<br>world</p>`),
		"quire.toml": []byte(`
output = "out/book.epub"
stylesheets = ["style.css"]
images = ["img/pic.png"]

[book]
title = "Tales"
authors = ["Ann"]
cover = "cover.png"

[toc]
title_case = true

[[chapters]]
title = "One"
file = "chapters/one.html"
section = "part one"

[[chapters]]
title = "Two"
author = "Guest"
file = "chapters/two.html"
section = "part one"
`),
	}
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "quire.toml")
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func testContext() context.Context {
	return withLogger(context.Background(), discardLogger())
}

func TestBuildBook(t *testing.T) {
	cfg, err := config.Load(writeTestProject(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := buildBook(testContext(), cfg, nil)
	if err != nil {
		t.Fatalf("buildBook: %v", err)
	}

	r, err := inspect.OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	wantSpine := []string{"titlepage.xhtml", "toc.xhtml", "text-3.xhtml", "text-4.xhtml"}
	if diff := cmp.Diff(wantSpine, r.Package().SpinePaths()); diff != "" {
		t.Errorf("spine mismatch (-want +got):\n%s", diff)
	}

	var kinds []string
	for _, l := range r.Landmarks() {
		kinds = append(kinds, l.Type)
	}
	if diff := cmp.Diff([]string{"toc", "bodymatter", "cover"}, kinds); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}

	meta := r.Metadata()
	if meta.Title != "Tales" || meta.Language != "en" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	chapter, err := r.ReadFile("text-3.xhtml")
	if err != nil {
		t.Fatalf("ReadFile chapter: %v", err)
	}
	for _, want := range []string{`src="image-0.png"`, `href="stylesheet-1.css"`, "<h1>One</h1>"} {
		if !strings.Contains(string(chapter), want) {
			t.Errorf("chapter missing %s:\n%s", want, chapter)
		}
	}

	toc, err := r.ReadFile("toc.xhtml")
	if err != nil {
		t.Fatalf("ReadFile toc: %v", err)
	}
	for _, want := range []string{"<h2>Part One</h2>", `href="text-3.xhtml"`, `href="text-4.xhtml"`, "Guest"} {
		if !strings.Contains(string(toc), want) {
			t.Errorf("toc page missing %s:\n%s", want, toc)
		}
	}
}

func TestBuildBookWithoutTOC(t *testing.T) {
	cfg, err := config.Load(writeTestProject(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.TOC.Enabled = false

	data, err := buildBook(testContext(), cfg, nil)
	if err != nil {
		t.Fatalf("buildBook: %v", err)
	}
	r, err := inspect.OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	spine := r.Package().SpinePaths()
	if len(spine) != 3 || spine[0] != "titlepage.xhtml" {
		t.Fatalf("unexpected spine: %v", spine)
	}
	for _, l := range r.Landmarks() {
		if l.Type == "toc" {
			t.Fatal("toc landmark set without a table of contents page")
		}
	}
}

type fixedRecognizer string

func (f fixedRecognizer) RecognizeImage([]byte) (string, error) {
	return string(f), nil
}

func TestBuildBookUsesRecognizedCoverText(t *testing.T) {
	cfg, err := config.Load(writeTestProject(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	data, err := buildBook(testContext(), cfg, fixedRecognizer("TALES\nof the North"))
	if err != nil {
		t.Fatalf("buildBook: %v", err)
	}
	r, err := inspect.OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	page, err := r.ReadFile("titlepage.xhtml")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(page), "<title>TALES of the North</title>") {
		t.Errorf("title page does not describe the cover with recognized text:\n%s", page)
	}
}

func TestBuildBookCanceled(t *testing.T) {
	cfg, err := config.Load(writeTestProject(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx, cancel := context.WithCancel(testContext())
	cancel()

	if _, err := buildBook(ctx, cfg, nil); err != context.Canceled {
		t.Fatalf("buildBook error = %v, want context.Canceled", err)
	}
}

func TestGroupSections(t *testing.T) {
	chapters := []listedChapter{
		{section: "the start", entry: markup.TOCEntry{Title: "A"}},
		{section: "", entry: markup.TOCEntry{Title: "B"}},
		{section: "the start", entry: markup.TOCEntry{Title: "C"}},
	}

	got := groupSections(chapters, true, "en")
	want := []markup.TOCSection{
		{Title: "The Start", Entries: []markup.TOCEntry{{Title: "A"}, {Title: "C"}}},
		{Title: "", Entries: []markup.TOCEntry{{Title: "B"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groupSections mismatch (-want +got):\n%s", diff)
	}

	plain := groupSections(chapters, false, "en")
	if plain[0].Title != "the start" {
		t.Errorf("section title changed without title casing: %q", plain[0].Title)
	}
}

func TestBuildCommandWritesOutput(t *testing.T) {
	project := writeTestProject(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)

	root := c.RootCommand()
	root.SetArgs([]string{"build", "-c", project})
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("build command: %v", err)
	}

	out := filepath.Join(filepath.Dir(project), "out", "book.epub")
	r, err := inspect.Open(out)
	if err != nil {
		t.Fatalf("Open output: %v", err)
	}
	defer r.Close()

	if _, err := os.Stat(out + ".lock"); !os.IsNotExist(err) {
		t.Errorf("lock file left behind: %v", err)
	}
	if !strings.Contains(logs.String(), "Built book") {
		t.Errorf("expected completion log, got %q", logs.String())
	}
}

func TestBuildCommandOCRFallsBackToTitle(t *testing.T) {
	project := writeTestProject(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)

	root := c.RootCommand()
	root.SetArgs([]string{"build", "-c", project, "-o", "-", "--ocr-cover"})
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("build command: %v", err)
	}

	r, err := inspect.OpenBytes(stdout.Bytes())
	if err != nil {
		t.Fatalf("OpenBytes stdout: %v", err)
	}
	page, err := r.ReadFile("titlepage.xhtml")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Either OCR is compiled in and recognized something, or the title is used.
	if !strings.Contains(string(page), "<title>") {
		t.Errorf("title page has no description:\n%s", page)
	}
}
