package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tortuga/internal/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tortuga.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `
width = 800
seed = 99
renderer = "record"
record_dsn = "sqlite3:trace.db"
lang = "es"
`)
	cfg, err := LoadConfiguration(DefaultConfiguration(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 480 {
		t.Errorf("surface: want 800x480, got %gx%g", cfg.Width, cfg.Height)
	}
	if cfg.Seed != 99 || cfg.Renderer != RendererRecord || cfg.Lang != "es" {
		t.Errorf("unexpected overlay: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "colour = 3\n", "unknown keys colour"},
		{"bad syntax", "width = \n", "config"},
		{"wrong type", "width = \"wide\"\n", "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := DefaultConfiguration()
			cfg, err := LoadConfiguration(base, writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if cfg != base {
				t.Errorf("a failed load must return the base configuration")
			}
		})
	}

	if _, err := LoadConfiguration(DefaultConfiguration(), filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		change func(c *Configuration)
		ok     bool
	}{
		{"defaults", func(c *Configuration) {}, true},
		{"zero width", func(c *Configuration) { c.Width = 0 }, false},
		{"zero turtle", func(c *Configuration) { c.TurtleHeight = 0 }, false},
		{"zero depth", func(c *Configuration) { c.MaxDepth = 0 }, false},
		{"depth at the limit", func(c *Configuration) { c.MaxDepth = engine.LimitMaxDepth }, true},
		{"depth past the limit", func(c *Configuration) { c.MaxDepth = 100000000 }, false},
		{"bad renderer", func(c *Configuration) { c.Renderer = "opengl" }, false},
		{"record without dsn", func(c *Configuration) { c.Renderer = RendererRecord; c.RecordDSN = "" }, false},
		{"term", func(c *Configuration) { c.Renderer = RendererTerm }, true},
		{"term and record", func(c *Configuration) { c.Renderer = "term, record" }, true},
		{"one bad of two", func(c *Configuration) { c.Renderer = "term,svg" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfiguration()
			tt.change(&c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("validate: ok=%v, got %v", tt.ok, err)
			}
		})
	}
}

func TestGetContextLines(t *testing.T) {
	src := "function main()\n    goForward(10)\n    setPenColor(99)\nendfunction\n"

	out := GetContextLines(src, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "       1 | function main()" {
		t.Errorf("first context line: %q", lines[0])
	}
	if lines[2] != "  >    3 |     setPenColor(99)" {
		t.Errorf("marked line: %q", lines[2])
	}
	if strings.Index(lines[3], "^") != strings.Index(lines[2], "s") {
		t.Errorf("caret should sit under the first visible character:\n%s", out)
	}

	if out := GetContextLines(src, 1); strings.Count(out, "\n") != 1 {
		t.Errorf("first line has no context before it:\n%s", out)
	}
	if GetContextLines(src, 0) != "" || GetContextLines(src, 99) != "" {
		t.Error("out of range lines should give nothing")
	}
}

func TestRenderers(t *testing.T) {
	c := DefaultConfiguration()
	c.Renderer = " term ,record,"
	got := c.Renderers()
	if len(got) != 2 || got[0] != RendererTerm || got[1] != RendererRecord {
		t.Errorf("unexpected renderers: %q", got)
	}
	if !c.Uses(RendererRecord) || c.Uses(RendererNone) {
		t.Errorf("Uses disagrees with %q", got)
	}
	c.Renderer = ""
	if got := c.Renderers(); len(got) != 1 || got[0] != RendererNone {
		t.Errorf("empty list should mean none, got %q", got)
	}
}
