package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tortuga/internal/engine"
	"tortuga/internal/locale"
	tlog "tortuga/internal/log"
	"tortuga/internal/render"
	"tortuga/internal/render/record"
	"tortuga/internal/render/term"
	"tortuga/internal/repl"
	"tortuga/internal/runner"
	"tortuga/internal/stdlib"
	"tortuga/internal/turtle"
	"tortuga/internal/util"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	historyFile = ".tortuga_history"

	haltGrace = 5 * time.Second
)

var (
	// Version is set at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"

	help        bool
	version     bool
	interactive bool
	configPath  string
	listRuns    bool
	replayID    int64

	// flag values, applied over the config file only when set
	flags = util.DefaultConfiguration()
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.BoolVar(&interactive, "i", false, "Start the interactive mode")
	flag.StringVar(&configPath, "config", "", "Read settings from a TOML file")
	// log config
	flag.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&flags.LogFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	// renderer config
	flag.StringVar(&flags.Renderer, "renderer", flags.Renderer, "Renderers, comma separated: none, term, record")
	flag.BoolVar(&listRuns, "runs", false, "List the runs kept in the trace store and exit")
	flag.Int64Var(&replayID, "replay", 0, "Replay a stored run onto the renderers and exit")
	flag.StringVar(&flags.RecordDSN, "record-dsn", flags.RecordDSN, "Trace store: a sqlite path, sqlite3:..., mysql://... or postgres://...")
	flag.Float64Var(&flags.Width, "width", flags.Width, "Surface width")
	flag.Float64Var(&flags.Height, "height", flags.Height, "Surface height")
	// engine config
	flag.Uint64Var(&flags.Seed, "seed", flags.Seed, "Seed for random()")
	flag.IntVar(&flags.MaxDepth, "max-depth", flags.MaxDepth, "Maximum procedure call depth")
	// host messages
	flag.StringVar(&flags.Lang, "lang", flags.Lang, "Language of host messages, e.g. en, es, de")
	flag.StringVar(&flags.Locale, "locale", "", "Message overrides: a TOML file or an http(s) URL")
	// parser config
	flag.StringVar(&flags.DebugTree, "debug-tree", "", "Write the parsed program tree as YAML to this file")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if version {
		printVersion()
		return exitOK
	}
	if help {
		printHelp()
		return exitOK
	}

	cfg, err := configure()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	logger, logCloser, err := tlog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := printer(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	if listRuns || replayID != 0 {
		return traces(ctx, cfg, p)
	}

	if !interactive {
		switch flag.NArg() {
		case 1:
		case 0:
			fmt.Fprintln(os.Stderr, p.Sprintf(locale.MsgNoProgram))
			fmt.Fprintln(os.Stderr, p.Sprintf(locale.MsgUsage))
			return exitUsage
		default:
			fmt.Fprintln(os.Stderr, p.Sprintf(locale.MsgTooManyFiles))
			fmt.Fprintln(os.Stderr, p.Sprintf(locale.MsgUsage))
			return exitUsage
		}
	}

	h, err := newHost(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	defer h.close()

	r := runner.New(turtle.NewSpace(h.renderer), stdlib.New(cfg.Seed), cfg.Seed,
		engine.WithMaxDepth(cfg.MaxDepth),
		engine.WithLogger(logger))

	if cfg.DebugTree != "" {
		f, err := os.Create(cfg.DebugTree)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailed
		}
		defer f.Close()
		r.TreeDump = f
	}

	if interactive {
		stop() // the session handles interrupts per entry
		home, _ := os.UserHomeDir()
		history := cfg.History
		if history == "" && home != "" {
			history = filepath.Join(home, historyFile)
		}
		if err := repl.Start(context.Background(), repl.NewSession(r), p, Version, history); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFailed
		}
		return exitOK
	}

	return runFile(ctx, cfg, r, h, p, flag.Arg(0))
}

func runFile(ctx context.Context, cfg util.Configuration, r *runner.Runner, h *host, p *locale.Printer, path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}

	started := time.Now()
	fut := r.RunAsync(ctx, filepath.Base(path), string(src))
	res, err := fut.AwaitContext(ctx)
	if err != nil && errors.Is(err, ctx.Err()) {
		slog.Info("interrupted", slog.String("program", path))
		r.Halt()
		var ok bool
		// a builtin stuck in the renderer may never reach a statement boundary
		if res, _, ok = fut.AwaitTimeout(haltGrace); !ok {
			fmt.Fprintln(os.Stderr, p.Sprintf(locale.MsgInterrupted))
			return exitFailed
		}
	}

	if h.store != nil {
		run := record.Run{
			Name:    filepath.Base(path),
			Status:  res.Status.String(),
			Started: started,
			Parse:   res.Timings.Parse,
			Link:    res.Timings.Link,
			Exec:    res.Timings.Exec,
		}
		if id, err := h.store.SaveRun(context.Background(), run, h.recorder.Calls()); err != nil {
			slog.Error("failed to save trace", slog.Any("error", err))
		} else {
			slog.Info("trace saved", slog.Int64("run", id), slog.String("dsn", cfg.RecordDSN))
		}
	}
	if h.terminal != nil && res.Status == runner.COMPLETED {
		h.terminal.WaitKey(ctx)
	}
	h.close()

	timings := p.Timings(res.Timings.Parse, res.Timings.Link, res.Timings.Exec)
	switch res.Status {
	case runner.COMPLETED:
		fmt.Println(p.Sprintf(locale.MsgCompleted))
		fmt.Println(timings)
		return exitOK
	case runner.STOPPED:
		if ctx.Err() != nil {
			fmt.Println(p.Sprintf(locale.MsgInterrupted))
		}
		fmt.Println(p.Sprintf(locale.MsgStopped))
		fmt.Println(timings)
		return exitOK
	default:
		fmt.Fprintln(os.Stderr, p.Sprintf(locale.MsgFailed, runner.Report(res, string(src))))
		return exitFailed
	}
}

// traces serves -runs and -replay from the trace store.
func traces(ctx context.Context, cfg util.Configuration, p *locale.Printer) int {
	store, err := record.Open(ctx, cfg.RecordDSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	defer store.Close()

	if listRuns {
		return printRuns(ctx, store, p, os.Stdout)
	}

	// a replay is never recorded again
	out := cfg
	out.Renderer = util.RendererNone
	if cfg.Uses(util.RendererTerm) {
		out.Renderer = util.RendererTerm
	}
	h, err := newHost(ctx, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	defer h.close()
	return replay(ctx, store, h, p, replayID, os.Stdout)
}

func printRuns(ctx context.Context, store *record.Store, p *locale.Printer, out io.Writer) int {
	runs, err := store.Runs(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, p.Sprintf(locale.MsgNoRuns))
		return exitOK
	}
	for _, run := range runs {
		fmt.Fprintln(out, p.Sprintf(locale.MsgRun, run.ID, run.Name, run.Status, run.Started.Format(time.DateTime)))
		fmt.Fprintln(out, "  "+p.Timings(run.Parse, run.Link, run.Exec))
	}
	return exitOK
}

func replay(ctx context.Context, store *record.Store, h *host, p *locale.Printer, id int64, out io.Writer) int {
	run, calls, err := store.LoadRun(ctx, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailed
	}
	record.Replay(calls, h.renderer)
	if h.terminal != nil {
		h.terminal.WaitKey(ctx)
	}
	h.close()

	fmt.Fprintln(out, p.Sprintf(locale.MsgReplayed, run.ID, run.Name, run.Status, len(calls)))
	fmt.Fprintln(out, p.Timings(run.Parse, run.Link, run.Exec))
	return exitOK
}

// configure layers defaults, the config file and explicitly set flags.
func configure() (util.Configuration, error) {
	cfg := util.DefaultConfiguration()
	if configPath != "" {
		var err error
		if cfg, err = util.LoadConfiguration(cfg, configPath); err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "log-file":
			cfg.LogFile = flags.LogFile
		case "renderer":
			cfg.Renderer = flags.Renderer
		case "record-dsn":
			cfg.RecordDSN = flags.RecordDSN
		case "width":
			cfg.Width = flags.Width
		case "height":
			cfg.Height = flags.Height
		case "seed":
			cfg.Seed = flags.Seed
		case "max-depth":
			cfg.MaxDepth = flags.MaxDepth
		case "lang":
			cfg.Lang = flags.Lang
		case "locale":
			cfg.Locale = flags.Locale
		case "debug-tree":
			cfg.DebugTree = flags.DebugTree
		}
	})
	cfg.Version, cfg.BuildDate, cfg.Commit = Version, BuildDate, Commit
	return cfg, cfg.Validate()
}

func printer(ctx context.Context, cfg util.Configuration) (*locale.Printer, error) {
	var overrides locale.Overrides
	if cfg.Locale != "" {
		var err error
		if overrides, err = locale.LoadOverrides(ctx, cfg.Locale); err != nil {
			return nil, err
		}
	}
	return locale.New(cfg.Lang, overrides)
}

// host holds the output devices chosen on the command line.
type host struct {
	renderer turtle.Renderer
	recorder *render.Recorder
	store    *record.Store
	terminal *term.Terminal
	closers  []io.Closer
	closed   bool
}

func newHost(ctx context.Context, cfg util.Configuration) (*host, error) {
	h := &host{}
	var outputs render.Multi

	if cfg.Uses(util.RendererTerm) {
		t, err := term.Open()
		if err != nil {
			return nil, err
		}
		h.terminal = t
		outputs = append(outputs, term.New(t.Canvas(), cfg.Width, cfg.Height, cfg.TurtleWidth, cfg.TurtleHeight))
	}
	if cfg.Uses(util.RendererRecord) {
		store, err := record.Open(ctx, cfg.RecordDSN)
		if err != nil {
			h.close()
			return nil, err
		}
		h.store = store
		h.closers = append(h.closers, store)
	}

	// the recorder doubles as the headless backend
	h.recorder = render.NewRecorder(cfg.Width, cfg.Height).WithTurtleSize(cfg.TurtleWidth, cfg.TurtleHeight)
	if h.store != nil || len(outputs) == 0 {
		outputs = append(outputs, h.recorder)
	}

	if len(outputs) == 1 {
		h.renderer = outputs[0]
	} else {
		h.renderer = outputs
	}
	return h, nil
}

func (h *host) close() {
	if h.closed {
		return
	}
	h.closed = true
	if h.terminal != nil {
		h.terminal.Close()
	}
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close failed", slog.Any("error", err))
		}
	}
}

func printVersion() {
	fmt.Printf("tortuga version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: tortuga [options] <file.tt>
       tortuga -i [options]

Options:
  -config <path>        Read settings from a TOML file; flags win over it.
  -renderer <list>      Renderers, comma separated: none, term, record. Default is 'none'.
  -record-dsn <dsn>     Trace store for the record renderer. Default is 'tortuga.db'.
  -runs                 List the runs kept in the trace store and exit.
  -replay <id>          Replay a stored run onto the renderers and exit.
  -width, -height <n>   Surface size. Default is 640x480.
  -seed <n>             Seed for random(). Default is 1.
  -max-depth <n>        Maximum procedure call depth. Default is 1000.
  -lang <tag>           Language of host messages. Default is 'en'.
  -locale <file|url>    Message overrides as a TOML table per language.
  -debug-tree <path>    Write the parsed program tree as YAML.
  -i                    Start the interactive mode.
  -log-level <level>    Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>      Specify a log file to write logs. Default is stderr.
  -help                 Display this help information and exit.
  -version              Display version information and exit.

Examples:
  tortuga square.tt                         Run a program headless and print timings
  tortuga -renderer term spiral.tt          Draw on the terminal
  tortuga -renderer term,record spiral.tt   Draw and keep a trace in tortuga.db
  tortuga -renderer term -replay 3          Draw run #3 from tortuga.db again
  tortuga -i                                Start the interactive mode

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
