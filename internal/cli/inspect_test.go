package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

func TestInspectCommand(t *testing.T) {
	project := writeTestProject(t)
	c := New(io.Discard, LogInfo)

	build := c.RootCommand()
	build.SetArgs([]string{"build", "-c", project})
	if err := build.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("build command: %v", err)
	}

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetArgs([]string{"inspect", filepath.Join(filepath.Dir(project), "out", "book.epub")})
	root.SetOut(&out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect command: %v", err)
	}

	for _, want := range []string{"Tales", "mimetype", "stored", "titlepage.xhtml", "bodymatter", "Table of Contents"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("inspect output missing %q:\n%s", want, out.String())
		}
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quire.toml")
	c := New(io.Discard, LogInfo)

	root := c.RootCommand()
	root.SetArgs([]string{"init", path})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("init command: %v", err)
	}

	again := c.RootCommand()
	again.SetArgs([]string{"init", path})
	if err := again.ExecuteContext(context.Background()); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}
