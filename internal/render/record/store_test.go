package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"tortuga/internal/render"
	"tortuga/internal/turtle"
)

func TestParseDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
		target string
	}{
		{"trace.db", "sqlite3", "trace.db"},
		{"sqlite3::memory:", "sqlite3", ":memory:"},
		{"sqlite3:/tmp/t.db", "sqlite3", "/tmp/t.db"},
		{"mysql://u:pw@tcp(localhost:3306)/tortuga", "mysql", "u:pw@tcp(localhost:3306)/tortuga"},
		{"postgres://u@localhost/tortuga?sslmode=disable", "postgres", "postgres://u@localhost/tortuga?sslmode=disable"},
		{"postgresql://localhost/tortuga", "postgres", "postgresql://localhost/tortuga"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, target, err := parseDSN(tt.dsn)
			if err != nil {
				t.Fatal(err)
			}
			if d.name != tt.driver || target != tt.target {
				t.Errorf("want %s %q, got %s %q", tt.driver, tt.target, d.name, target)
			}
		})
	}

	if _, _, err := parseDSN(""); err == nil {
		t.Error("expected an error for an empty DSN")
	}
}

func TestConnectRejectsBadMySQLDSN(t *testing.T) {
	if _, err := connect(mysqlDialect, "no-at-sign-or-slash"); err == nil {
		t.Error("expected a mysql DSN error")
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	if got := postgresDialect.rebind(q); got != "INSERT INTO t (a, b) VALUES ($1, $2)" {
		t.Errorf("postgres: %q", got)
	}
	if got := sqliteDialect.rebind(q); got != q {
		t.Errorf("sqlite should keep ?, got %q", got)
	}
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite3::memory:")
	if err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	rec := render.NewRecorder(200, 200)
	white := turtle.Palette[turtle.DefaultColor]
	rec.NotifyGrabbed()
	rec.RenderLine(100, 100, 100, 50, white)
	rec.RenderTurtle(turtle.Turtle{ID: 2, X: 100, Y: 50, Angle: 270, Pen: white})
	rec.RenderString(100, 50, 270, white, "hi")
	rec.NotifyUngrabbed()
	rec.Cleanup()

	run := Run{
		Name:    "square.tt",
		Status:  "completed",
		Started: time.Unix(1700000000, 42),
		Parse:   time.Millisecond,
		Exec:    3 * time.Millisecond,
	}
	id, err := s.SaveRun(ctx, run, rec.Calls())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, calls, err := s.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != run.Name || got.Status != run.Status || !got.Started.Equal(run.Started) || got.Exec != run.Exec {
		t.Errorf("run header: want %+v, got %+v", run, got)
	}
	want := rec.Calls()
	if len(calls) != len(want) {
		t.Fatalf("want %d calls, got %d", len(want), len(calls))
	}
	for i := range want {
		if calls[i].String() != want[i].String() {
			t.Errorf("call %d: want %s, got %s", i, want[i], calls[i])
		}
	}

	replayed := render.NewRecorder(200, 200)
	Replay(calls, replayed)
	if len(replayed.Calls()) != len(want) || len(replayed.Lines()) != 1 {
		t.Errorf("replay should reproduce the trace, got %d calls", len(replayed.Calls()))
	}

	runs, err := s.Runs(ctx)
	if err != nil || len(runs) != 1 || runs[0].ID != id {
		t.Errorf("runs: got %+v %v", runs, err)
	}

	if _, _, err := s.LoadRun(ctx, id+100); !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
}
