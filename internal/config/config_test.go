package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"github.com/tsawler/quire/internal/config"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "quire.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write project: %v", err)
	}
	return path
}

const minimalProject = `
[book]
title = "  Tales  "
cover = "art/cover.png"

[[chapters]]
title = "One"
file = "one.html"
`

func TestLoadResolvesPathsAgainstProjectDir(t *testing.T) {
	path := writeProject(t, `
output = "out/book.epub"
stylesheets = ["style.css", "  "]
images = ["img/a.png"]

[book]
title = "Tales"
authors = [" Ann ", ""]
cover = "cover.jpg"

[[chapters]]
title = "One"
file = "chapters/one.html"
section = " Part I "
`)
	dir := filepath.Dir(path)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Dir != dir {
		t.Fatalf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if want := filepath.Join(dir, "out", "book.epub"); cfg.Output != want {
		t.Errorf("Output = %q, want %q", cfg.Output, want)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "style.css")}, cfg.Stylesheets); diff != "" {
		t.Errorf("Stylesheets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "img", "a.png")}, cfg.Images); diff != "" {
		t.Errorf("Images mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ann"}, cfg.Book.Authors); diff != "" {
		t.Errorf("Authors mismatch (-want +got):\n%s", diff)
	}
	if want := filepath.Join(dir, "cover.jpg"); cfg.Book.Cover != want {
		t.Errorf("Cover = %q, want %q", cfg.Book.Cover, want)
	}

	wantChapter := config.Chapter{
		Title:   "One",
		File:    filepath.Join(dir, "chapters", "one.html"),
		Section: "Part I",
	}
	if diff := cmp.Diff([]config.Chapter{wantChapter}, cfg.Chapters); diff != "" {
		t.Errorf("Chapters mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeProject(t, minimalProject))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Book.Title != "Tales" {
		t.Errorf("Title = %q, want trimmed %q", cfg.Book.Title, "Tales")
	}
	if cfg.Book.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Book.Language)
	}
	if !cfg.TOC.Enabled {
		t.Error("expected table of contents enabled by default")
	}
	if cfg.TOC.Title != config.Default().TOC.Title {
		t.Errorf("TOC title = %q", cfg.TOC.Title)
	}
	if cfg.OCR.Enabled {
		t.Error("expected OCR disabled by default")
	}
	if filepath.Base(cfg.Output) != "book.epub" {
		t.Errorf("Output = %q, want book.epub in project dir", cfg.Output)
	}
	if !cfg.PublishTime().IsZero() {
		t.Errorf("PublishTime = %v, want zero", cfg.PublishTime())
	}
}

func TestLoadKeepsStdoutOutput(t *testing.T) {
	cfg, err := config.Load(writeProject(t, "output = \"-\"\n"+minimalProject))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Output != "-" {
		t.Fatalf("Output = %q, want -", cfg.Output)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := config.Load(writeProject(t, minimalProject+"\n[book2]\ntitle = \"x\"\n"))
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Book.Title = "Tales"
		cfg.Book.Cover = "/tmp/cover.png"
		cfg.Chapters = []config.Chapter{{Title: "One", File: "/tmp/one.html"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"missing title", func(c *config.Config) { c.Book.Title = "" }, "book.title"},
		{"bad language", func(c *config.Config) { c.Book.Language = "not a tag!" }, "book.language"},
		{"missing cover", func(c *config.Config) { c.Book.Cover = "" }, "book.cover"},
		{"bad date", func(c *config.Config) { c.Book.PublishDate = "31/01/2024" }, "book.publish_date"},
		{"negative series number", func(c *config.Config) { c.Book.Series = "S"; c.Book.SeriesNumber = -1 }, "series_number"},
		{"series number without series", func(c *config.Config) { c.Book.SeriesNumber = 2 }, "requires book.series"},
		{"no chapters", func(c *config.Config) { c.Chapters = nil }, "chapters"},
		{"chapter without file", func(c *config.Config) { c.Chapters[0].File = "" }, "chapters[0].file"},
		{"chapter without title", func(c *config.Config) { c.Chapters[0].Title = "" }, "chapters[0].title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate returned error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestPublishTime(t *testing.T) {
	cfg := config.Default()
	cfg.Book.PublishDate = "2024-01-31"
	want := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	if got := cfg.PublishTime(); !got.Equal(want) {
		t.Fatalf("PublishTime = %v, want %v", got, want)
	}
}

func TestSampleConfigParses(t *testing.T) {
	var cfg config.Config
	if err := toml.Unmarshal([]byte(config.Sample()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if len(cfg.Chapters) == 0 {
		t.Fatal("sample config should declare chapters")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.DefaultFileName)
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if cfg.Book.Title == "" {
		t.Fatal("expected sample title")
	}

	if err := config.CreateSample(path); !errors.Is(err, config.ErrExists) {
		t.Fatalf("second CreateSample error = %v, want ErrExists", err)
	}
}
