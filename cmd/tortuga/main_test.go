package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tortuga/internal/locale"
	"tortuga/internal/render"
	"tortuga/internal/render/record"
	"tortuga/internal/runner"
	"tortuga/internal/stdlib"
	"tortuga/internal/turtle"
	"tortuga/internal/util"
)

func TestConfigureFlagsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	configPath = filepath.Join(dir, "tortuga.toml")
	defer func() { configPath = "" }()
	if err := os.WriteFile(configPath, []byte("seed = 5\nwidth = 300\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := flag.CommandLine.Parse([]string{"-seed", "9", "prog.tt"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := configure()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 9 {
		t.Errorf("seed: the flag should win, got %d", cfg.Seed)
	}
	if cfg.Width != 300 {
		t.Errorf("width: the file value should stay, got %g", cfg.Width)
	}
	if cfg.Version != Version {
		t.Errorf("version not carried into the configuration")
	}
}

func TestRunFile(t *testing.T) {
	cfg, err := configure()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Renderer = "record"
	cfg.RecordDSN = "sqlite3::memory:"

	h, err := newHost(context.Background(), cfg)
	if err != nil {
		t.Skipf("trace store unavailable: %v", err)
	}
	defer h.close()
	if _, ok := h.renderer.(*render.Recorder); !ok {
		t.Fatalf("record alone should render into the recorder, got %T", h.renderer)
	}

	path := filepath.Join(t.TempDir(), "square.tt")
	src := "function main()\n  repeat 4\n    goForward(10)\n    turnRight(90)\n  endrepeat\nendfunction\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	p, _ := locale.New("en", nil)
	r := runner.New(turtle.NewSpace(h.renderer), stdlib.New(cfg.Seed), cfg.Seed)
	if code := runFile(context.Background(), cfg, r, h, p, path); code != exitOK {
		t.Fatalf("exit code %d", code)
	}

	if code := runFile(context.Background(), cfg, r, h, p, filepath.Join(t.TempDir(), "missing.tt")); code != exitFailed {
		t.Errorf("a missing file should fail, got %d", code)
	}
}

func TestRunsAndReplay(t *testing.T) {
	ctx := context.Background()
	store, err := record.Open(ctx, "sqlite3::memory:")
	if err != nil {
		t.Skipf("trace store unavailable: %v", err)
	}
	defer store.Close()
	p, _ := locale.New("en", nil)

	var out bytes.Buffer
	if code := printRuns(ctx, store, p, &out); code != exitOK || !strings.Contains(out.String(), "no runs stored") {
		t.Fatalf("empty store: %d %q", code, out.String())
	}

	trace := render.NewRecorder(100, 100)
	trace.NotifyGrabbed()
	trace.RenderLine(0, 0, 10, 0, turtle.Palette[15])
	trace.NotifyUngrabbed()
	id, err := store.SaveRun(ctx, record.Run{Name: "line.tt", Status: "completed", Started: time.Now()}, trace.Calls())
	if err != nil {
		t.Fatal(err)
	}

	out.Reset()
	printRuns(ctx, store, p, &out)
	if !strings.Contains(out.String(), "line.tt completed") {
		t.Errorf("run listing: %q", out.String())
	}

	h, err := newHost(ctx, util.DefaultConfiguration())
	if err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if code := replay(ctx, store, h, p, id, &out); code != exitOK {
		t.Fatalf("replay exit code %d", code)
	}
	if got := len(h.recorder.Calls()); got != 3 {
		t.Errorf("replay should feed 3 calls to the renderer, got %d", got)
	}
	if !strings.Contains(out.String(), "line.tt (completed), 3 calls") {
		t.Errorf("replay summary: %q", out.String())
	}

	if code := replay(ctx, store, h, p, id+100, &out); code != exitFailed {
		t.Errorf("an unknown run should fail, got %d", code)
	}
}
