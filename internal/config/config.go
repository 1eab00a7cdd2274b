package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cypherlite/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// Config holds process settings for the CLI and MCP server.
type Config struct {
	Database      string
	BusyTimeoutMS int
	JournalMode   string
	Synchronous   string
	LogLevel      string
	LogFormat     string
}

// Default returns the settings used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Database:      "cypherlite.db",
		BusyTimeoutMS: int(store.DefaultBusyTimeout / time.Millisecond),
		JournalMode:   store.DefaultJournalMode,
		Synchronous:   store.DefaultSynchronous,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// file mirrors #Config; nil fields were absent from the file.
type file struct {
	Database      *string `json:"database"`
	BusyTimeoutMS *int    `json:"busy_timeout_ms"`
	JournalMode   *string `json:"journal_mode"`
	Synchronous   *string `json:"synchronous"`
	LogLevel      *string `json:"log_level"`
	LogFormat     *string `json:"log_format"`
}

// Error reports an invalid configuration file with its CUE source position.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and validates the CUE file at path.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse validates src against #Config and applies it over Default.
// filename is used in error positions only.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var f file
	if err := unified.Decode(&f); err != nil {
		return Config{}, formatCUEError(err)
	}

	cfg := Default()
	if f.Database != nil {
		cfg.Database = *f.Database
	}
	if f.BusyTimeoutMS != nil {
		cfg.BusyTimeoutMS = *f.BusyTimeoutMS
	}
	if f.JournalMode != nil {
		cfg.JournalMode = *f.JournalMode
	}
	if f.Synchronous != nil {
		cfg.Synchronous = *f.Synchronous
	}
	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		cfg.LogFormat = *f.LogFormat
	}
	return cfg, nil
}

// StoreOptions converts the storage settings to store.Open options.
func (c Config) StoreOptions() []store.Option {
	return []store.Option{
		store.WithBusyTimeout(time.Duration(c.BusyTimeoutMS) * time.Millisecond),
		store.WithJournalMode(c.JournalMode),
		store.WithSynchronous(c.Synchronous),
	}
}

// SlogLevel maps LogLevel to a slog level; unknown names mean info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	e := &Error{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
