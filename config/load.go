package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lyraproj/semver/semver"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig reports that no config file was found in any default location
var ErrNoConfig = errors.New("no config file found")

// Load reads configuration with ENV interpolation and validates it.
// If configPath is empty, default locations are searched; finding nothing
// there yields Defaults.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath is Load that also returns the file it read, empty when defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := findConfig(configPath, getenv)
	switch {
	case errors.Is(err, ErrNoConfig):
		return Defaults(), "", nil
	case err != nil:
		return nil, "", err
	}
	if path, err = filepath.Abs(path); err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(interpolateEnv(raw, getenv), cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	cfg.REPL.HistoryFile = cfg.resolve(cfg.REPL.HistoryFile)
	if out := cfg.Logging.Output; out != "stderr" && out != "stdout" {
		cfg.Logging.Output = cfg.resolve(out)
	}

	if err := Validate(cfg, ""); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolve anchors a configured path: '~/' at the home directory, anything
// else relative at the config file's directory
func (c *Config) resolve(p string) string {
	if p == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, rest)
	}
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// findConfig picks the config file. An explicit path or WESLY_CONFIG must
// exist; otherwise ./wesly.yaml and ~/.config/wesly/wesly.yaml are tried.
func findConfig(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if !exists(explicit) {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	if fromEnv := getenv("WESLY_CONFIG"); fromEnv != "" {
		if !exists(fromEnv) {
			return "", fmt.Errorf("WESLY_CONFIG file not found: %s", fromEnv)
		}
		return fromEnv, nil
	}

	candidates := []string{"wesly.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "wesly", "wesly.yaml"))
	}
	for _, c := range candidates {
		if exists(c) {
			return c, nil
		}
	}
	return "", ErrNoConfig
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envRef is ${NAME} with an optional :-fallback
var envRef = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv substitutes environment references. Unset or empty
// variables take the fallback when one is given.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	var out []byte
	last := 0
	for _, m := range envRef.FindAllSubmatchIndex(data, -1) {
		out = append(out, data[last:m[0]]...)
		value := getenv(string(data[m[2]:m[3]]))
		if value == "" && m[4] >= 0 {
			value = string(data[m[4]:m[5]])
		}
		out = append(out, value...)
		last = m[1]
	}
	return append(out, data[last:]...)
}

// Validate reports every configuration problem at once.
// When version is non-empty it must satisfy the requires range.
func Validate(cfg *Config, version string) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if cfg.Evaluator.MaxCallDepth < 1 {
		add("invalid evaluator.max_call_depth: %d (must be at least 1)", cfg.Evaluator.MaxCallDepth)
	}
	if cfg.REPL.HistoryLimit < 0 {
		add("invalid repl.history_limit: %d (must not be negative)", cfg.REPL.HistoryLimit)
	}
	if cfg.Watch.Debounce < 0 {
		add("invalid watch.debounce: %s (must not be negative)", cfg.Watch.Debounce)
	}
	if _, err := parseLevel(cfg.Logging.Level); err != nil {
		add("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	if f := cfg.Logging.Format; f != "json" && f != "text" {
		add("invalid log format: %s (must be json or text)", f)
	}

	if cfg.Requires != "" {
		if err := checkRequires(cfg.Requires, version); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n%w", errors.Join(errs...))
	}
	return nil
}

// checkRequires parses the requires range and, given a version, tests it
func checkRequires(requires, version string) error {
	r, err := semver.ParseVersionRange(requires)
	if err != nil {
		return fmt.Errorf("invalid requires: %q: %v", requires, err)
	}
	if version == "" {
		return nil
	}
	v, err := semver.ParseVersion(version)
	if err != nil {
		return fmt.Errorf("invalid wesly version %q: %v", version, err)
	}
	if !r.Includes(v) {
		return fmt.Errorf("wesly %s does not satisfy requires %q", version, requires)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// NewLogger builds the diagnostic logger described by cfg. The returned closer
// releases a log file and is a no-op for stderr and stdout.
func NewLogger(cfg LoggingConfig) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	closer := func() error { return nil }
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log output: %w", err)
		}
		w, closer = f, f.Close
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), closer, nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), closer, nil
}
