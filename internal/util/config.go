package util

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"tortuga/internal/engine"
)

const (
	RendererNone   = "none"
	RendererTerm   = "term"
	RendererRecord = "record"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	TurtleWidth  float64 `toml:"turtle_width"`
	TurtleHeight float64 `toml:"turtle_height"`
	MaxDepth     int     `toml:"max_depth"`
	Seed         uint64  `toml:"seed"`

	Renderer  string `toml:"renderer"`
	RecordDSN string `toml:"record_dsn"`

	Lang   string `toml:"lang"`
	Locale string `toml:"locale"`

	DebugTree string `toml:"debug_tree"`
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	History   string `toml:"history"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Width:        640,
		Height:       480,
		TurtleWidth:  10,
		TurtleHeight: 10,
		MaxDepth:     1000,
		Seed:         1,
		Renderer:     RendererNone,
		RecordDSN:    "tortuga.db",
		Lang:         "en",
		LogLevel:     "none",
	}
}

// LoadConfiguration overlays the TOML file at path onto base. Unknown keys are
// an error so that typos do not pass silently.
func LoadConfiguration(base Configuration, path string) (Configuration, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return base, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func (c Configuration) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("surface size must be positive, got %gx%g", c.Width, c.Height)
	}
	if c.TurtleWidth <= 0 || c.TurtleHeight <= 0 {
		return fmt.Errorf("turtle size must be positive, got %gx%g", c.TurtleWidth, c.TurtleHeight)
	}
	if c.MaxDepth < 1 || c.MaxDepth > engine.LimitMaxDepth {
		return fmt.Errorf("max depth must be between 1 and %d, got %d", engine.LimitMaxDepth, c.MaxDepth)
	}
	for _, r := range c.Renderers() {
		switch r {
		case RendererNone, RendererTerm, RendererRecord:
		default:
			return fmt.Errorf("unknown renderer '%s': want none, term or record", r)
		}
		if r == RendererRecord && c.RecordDSN == "" {
			return fmt.Errorf("the record renderer needs a DSN")
		}
	}
	return nil
}

// Renderers splits the comma separated renderer list, e.g. "term,record".
func (c Configuration) Renderers() []string {
	var out []string
	for _, r := range strings.Split(c.Renderer, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return []string{RendererNone}
	}
	return out
}

func (c Configuration) Uses(renderer string) bool {
	for _, r := range c.Renderers() {
		if r == renderer {
			return true
		}
	}
	return false
}
