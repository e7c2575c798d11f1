// Package locale prints the host's own messages (timings, statuses, usage) in
// the user's language. Program output is never translated.
package locale

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/text/number"
)

// Message keys double as the English text.
const (
	MsgTimings      = "parse %v ms, link %v ms, exec %v ms"
	MsgCompleted    = "program completed"
	MsgStopped      = "program stopped"
	MsgFailed       = "program failed: %v"
	MsgUsage        = "usage: tortuga [options] <file.tt>"
	MsgTooManyFiles = "only one program file may be given"
	MsgNoProgram    = "no program file given, use -i for the interactive mode"
	MsgWelcome      = "tortuga %s: enter statements or definitions, ctrl-d quits"
	MsgBye          = "bye"
	MsgInterrupted  = "interrupted"
	MsgRun          = "#%d %s %s, started %s"
	MsgNoRuns       = "no runs stored"
	MsgReplayed     = "replayed run #%d %s (%s), %d calls"
)

var builtin = map[string]map[string]string{
	"es": {
		MsgTimings:      "análisis %v ms, enlace %v ms, ejecución %v ms",
		MsgCompleted:    "programa terminado",
		MsgStopped:      "programa detenido",
		MsgFailed:       "el programa falló: %v",
		MsgUsage:        "uso: tortuga [opciones] <archivo.tt>",
		MsgTooManyFiles: "solo se admite un archivo de programa",
		MsgNoProgram:    "falta el archivo de programa, use -i para el modo interactivo",
		MsgWelcome:      "tortuga %s: escriba sentencias o definiciones, ctrl-d para salir",
		MsgBye:          "adiós",
		MsgInterrupted:  "interrumpido",
		MsgRun:          "#%d %s %s, iniciado %s",
		MsgNoRuns:       "no hay ejecuciones guardadas",
		MsgReplayed:     "ejecución #%d %s (%s) reproducida, %d llamadas",
	},
	"de": {
		MsgTimings:      "Parsen %v ms, Binden %v ms, Ausführen %v ms",
		MsgCompleted:    "Programm beendet",
		MsgStopped:      "Programm angehalten",
		MsgFailed:       "Programm fehlgeschlagen: %v",
		MsgUsage:        "Aufruf: tortuga [Optionen] <datei.tt>",
		MsgTooManyFiles: "es darf nur eine Programmdatei angegeben werden",
		MsgNoProgram:    "keine Programmdatei angegeben, -i startet den interaktiven Modus",
		MsgWelcome:      "tortuga %s: Anweisungen oder Definitionen eingeben, Strg-D beendet",
		MsgBye:          "tschüss",
		MsgInterrupted:  "unterbrochen",
		MsgRun:          "#%d %s %s, gestartet %s",
		MsgNoRuns:       "keine Läufe gespeichert",
		MsgReplayed:     "Lauf #%d %s (%s) wiedergegeben, %d Aufrufe",
	},
}

// Overrides maps a language tag to message key/text pairs, the shape of a
// locale TOML file:
//
//	[fr]
//	"program completed" = "programme terminé"
type Overrides map[string]map[string]string

type Printer struct {
	*message.Printer
	tag language.Tag
}

// New builds a printer for lang with the built-in translations plus overrides.
func New(lang string, overrides Overrides) (*Printer, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("language '%s': %w", lang, err)
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, set := range []map[string]map[string]string{builtin, overrides} {
		for name, msgs := range set {
			t, err := language.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("locale table '%s': %w", name, err)
			}
			for key, text := range msgs {
				if err := b.SetString(t, key, text); err != nil {
					return nil, fmt.Errorf("locale %s %q: %w", name, key, err)
				}
			}
		}
	}
	return &Printer{Printer: message.NewPrinter(tag, message.Catalog(b)), tag: tag}, nil
}

func (p *Printer) Tag() language.Tag { return p.tag }

// Timings formats phase durations in milliseconds with locale digits.
func (p *Printer) Timings(parse, link, exec time.Duration) string {
	return p.Sprintf(MsgTimings, millis(parse), millis(link), millis(exec))
}

func millis(d time.Duration) number.Formatter {
	return number.Decimal(float64(d)/float64(time.Millisecond), number.MaxFractionDigits(3))
}

// LoadOverrides reads a locale TOML file from a path or an http(s) URL.
func LoadOverrides(ctx context.Context, src string) (Overrides, error) {
	var o Overrides
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		if _, err := toml.DecodeFile(src, &o); err != nil {
			return nil, fmt.Errorf("locale file %s: %w", src, err)
		}
		return o, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("locale url %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locale url %s: %s", src, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("locale url %s: %w", src, err)
	}
	if _, err := toml.Decode(string(body), &o); err != nil {
		return nil, fmt.Errorf("locale url %s: %w", src, err)
	}
	return o, nil
}
