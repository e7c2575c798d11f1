// Package repl is the interactive mode: each entry is either a definition
// (function or var) kept for later entries, or statements run at once.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"tortuga/internal/locale"
	"tortuga/internal/runner"
)

const (
	PROMPT      = "tt> "
	CONT_PROMPT = "... "
)

// LineReader is the part of *liner.State the loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Start runs an interactive session on the terminal until EOF or :quit.
// History is loaded from and saved to historyPath when it is set.
func Start(ctx context.Context, s *Session, p *locale.Printer, version, historyPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				slog.Warn("could not save history", slog.Any("error", err))
			}
		}()
	}

	fmt.Println(p.Sprintf(locale.MsgWelcome, version))
	Loop(ctx, s, ln, p, os.Stdout)
	fmt.Println(p.Sprintf(locale.MsgBye))
	return nil
}

// Loop reads entries from in until EOF, :quit or ctx is done. An interrupt
// while an entry runs halts that entry only.
func Loop(ctx context.Context, s *Session, in LineReader, p *locale.Printer, out io.Writer) {
	for ctx.Err() == nil {
		src, ok := readEntry(s, in)
		if !ok {
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		in.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if s.Command(src, out) {
				return
			}
			continue
		}

		entryCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		res := s.Eval(entryCtx, src)
		stop()

		switch res.Status {
		case runner.STOPPED:
			fmt.Fprintln(out, p.Sprintf(locale.MsgStopped))
		case runner.FAILED:
			fmt.Fprintln(out, runner.Report(res, src))
		}
	}
}

// readEntry keeps prompting while the parser says the entry is unfinished.
func readEntry(s *Session, in LineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONT_PROMPT
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			// ctrl-c drops the pending entry
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || s.Complete(src) {
			return src + "\n", true
		}
	}
}
