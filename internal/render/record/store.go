// Package record persists renderer traces, one row per run and one row per
// renderer call, so a drawing can be replayed or compared later.
package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tortuga/internal/render"
	"tortuga/internal/turtle"
)

var ErrNoRun = errors.New("no such run")

// Run is the header of one stored trace.
type Run struct {
	ID      int64
	Name    string
	Status  string
	Started time.Time
	Parse   time.Duration
	Link    time.Duration
	Exec    time.Duration
}

type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to dsn and creates the tables when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	d, target, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := connect(d, target)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d.name, err)
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	slog.Debug("trace store ready", slog.String("driver", d.name))
	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores run and its calls in one transaction and returns the run id.
func (s *Store) SaveRun(ctx context.Context, run Run, calls []render.Call) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insert := `INSERT INTO tortuga_runs (name, status, started_ns, parse_ns, link_ns, exec_ns) VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{run.Name, run.Status, run.Started.UnixNano(), int64(run.Parse), int64(run.Link), int64(run.Exec)}
	if s.dialect.returning {
		err = tx.QueryRowContext(ctx, s.dialect.rebind(insert+" RETURNING id"), args...).Scan(&id)
	} else {
		var res sql.Result
		if res, err = tx.ExecContext(ctx, insert, args...); err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(
		`INSERT INTO tortuga_calls (run_id, seq, op, x1, y1, x2, y2, angle, r, g, b, text, turtle)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for i, c := range calls {
		_, err = stmt.ExecContext(ctx, id, i, string(c.Op), c.X1, c.Y1, c.X2, c.Y2, c.Angle,
			float64(c.Color.R), float64(c.Color.G), float64(c.Color.B), c.Text, c.Turtle)
		if err != nil {
			return 0, fmt.Errorf("insert call %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	slog.Debug("trace saved", slog.Int64("run", id), slog.Int("calls", len(calls)))
	return id, nil
}

// LoadRun reads back a run and its calls in their original order.
func (s *Store) LoadRun(ctx context.Context, id int64) (Run, []render.Call, error) {
	run := Run{ID: id}
	var started, parse, link, exec int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT name, status, started_ns, parse_ns, link_ns, exec_ns FROM tortuga_runs WHERE id = ?`), id).
		Scan(&run.Name, &run.Status, &started, &parse, &link, &exec)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %d", ErrNoRun, id)
	}
	if err != nil {
		return Run{}, nil, err
	}
	run.Started = time.Unix(0, started)
	run.Parse, run.Link, run.Exec = time.Duration(parse), time.Duration(link), time.Duration(exec)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT op, x1, y1, x2, y2, angle, r, g, b, text, turtle FROM tortuga_calls WHERE run_id = ? ORDER BY seq`), id)
	if err != nil {
		return Run{}, nil, err
	}
	defer rows.Close()

	var calls []render.Call
	for rows.Next() {
		var (
			c       render.Call
			op      string
			r, g, b float64
		)
		if err := rows.Scan(&op, &c.X1, &c.Y1, &c.X2, &c.Y2, &c.Angle, &r, &g, &b, &c.Text, &c.Turtle); err != nil {
			return Run{}, nil, err
		}
		c.Op = render.Op(op)
		c.Color = turtle.Color{R: float32(r), G: float32(g), B: float32(b)}
		calls = append(calls, c)
	}
	return run, calls, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status, started_ns, parse_ns, link_ns, exec_ns FROM tortuga_runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run                       Run
			started, parse, link, exe int64
		)
		if err := rows.Scan(&run.ID, &run.Name, &run.Status, &started, &parse, &link, &exe); err != nil {
			return nil, err
		}
		run.Started = time.Unix(0, started)
		run.Parse, run.Link, run.Exec = time.Duration(parse), time.Duration(link), time.Duration(exe)
		out = append(out, run)
	}
	return out, rows.Err()
}

// Replay feeds stored calls to a renderer in order.
func Replay(calls []render.Call, r turtle.Renderer) {
	for _, c := range calls {
		switch c.Op {
		case render.OP_GRAB:
			r.NotifyGrabbed()
		case render.OP_UNGRAB:
			r.NotifyUngrabbed()
		case render.OP_LINE:
			r.RenderLine(c.X1, c.Y1, c.X2, c.Y2, c.Color)
		case render.OP_TURTLE:
			r.RenderTurtle(callTurtle(c))
		case render.OP_BLANK:
			r.BlankTurtle(callTurtle(c))
		case render.OP_STRING:
			r.RenderString(c.X1, c.Y1, c.Angle, c.Color, c.Text)
		case render.OP_CLEANUP:
			r.Cleanup()
		}
	}
}

func callTurtle(c render.Call) turtle.Turtle {
	return turtle.Turtle{ID: c.Turtle, X: c.X1, Y: c.Y1, Angle: c.Angle, Pen: c.Color, Visible: true}
}
