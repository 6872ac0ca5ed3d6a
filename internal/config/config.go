// Package config resolves runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAutoAdvanceDelay is how long a correct answer stays on screen before
// the run moves on by itself.
const DefaultAutoAdvanceDelay = time.Second

// Environment variables read by Load.
const (
	EnvDB              = "EXAMWEB_DB"
	EnvLog             = "EXAMWEB_LOG"
	EnvLogLevel        = "EXAMWEB_LOG_LEVEL"
	EnvAutoAdvance     = "EXAMWEB_AUTO_ADVANCE"
	EnvUnansweredFirst = "EXAMWEB_UNANSWERED_FIRST"
	EnvPresets         = "EXAMWEB_PRESETS"
)

// Config holds runtime settings.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath string

	// LogPath is the log file used while the TUI owns the terminal. Empty
	// means a file next to the database.
	LogPath string

	LogLevel slog.Level

	// AutoAdvanceDelay is how long a correct answer is shown before moving
	// on. Zero disables auto-advance.
	AutoAdvanceDelay time.Duration

	// UnansweredFirst limits fresh random runs to unanswered questions.
	UnansweredFirst bool

	// PresetsDir, when set, is loaded into an empty store at startup.
	PresetsDir string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		LogLevel:         slog.LevelInfo,
		AutoAdvanceDelay: DefaultAutoAdvanceDelay,
	}
}

// Load reads envFiles (a missing file is ignored; the default is ".env")
// and then applies environment variables over DefaultConfig. Variables
// already set in the process environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	cfg.DBPath = getenv(EnvDB)
	cfg.LogPath = getenv(EnvLog)
	cfg.PresetsDir = getenv(EnvPresets)

	if v := getenv(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}

	if v := strings.TrimSpace(getenv(EnvAutoAdvance)); v != "" {
		d, err := parseDelay(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvAutoAdvance, err)
		}
		cfg.AutoAdvanceDelay = d
	}

	if v := strings.TrimSpace(getenv(EnvUnansweredFirst)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvUnansweredFirst, err)
		}
		cfg.UnansweredFirst = b
	}
	return cfg, nil
}

// parseDelay accepts a Go duration, a bare number of milliseconds, or
// "off" to disable auto-advance.
func parseDelay(v string) (time.Duration, error) {
	switch strings.ToLower(v) {
	case "off", "false", "no":
		return 0, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative delay %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative delay %s", d)
	}
	return d, nil
}
