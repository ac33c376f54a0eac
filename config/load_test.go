package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wesly.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
evaluator:
  max_call_depth: 500
  short_circuit: true
repl:
  prompt: "wes> "
  history_file: history.txt
watch:
  debounce: 250ms
logging:
  level: debug
  format: json
`)

	cfg, resolved, err := LoadWithPath(path, envFrom(nil))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Evaluator.MaxCallDepth != 500 || !cfg.Evaluator.ShortCircuit {
		t.Errorf("unexpected evaluator config: %+v", cfg.Evaluator)
	}
	if cfg.REPL.Prompt != "wes> " {
		t.Errorf("unexpected prompt %q", cfg.REPL.Prompt)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce %s", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}

	dir := filepath.Dir(resolved)
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %s, got %s", dir, cfg.BaseDir)
	}
	if want := filepath.Join(dir, "history.txt"); cfg.REPL.HistoryFile != want {
		t.Errorf("expected history file %s, got %s", want, cfg.REPL.HistoryFile)
	}
	// untouched keys keep their defaults
	if cfg.REPL.HistoryLimit != 1000 || cfg.Logging.Output != "stderr" {
		t.Errorf("defaults lost: %+v %+v", cfg.REPL, cfg.Logging)
	}
}

func TestLoadInterpolatesEnvironment(t *testing.T) {
	path := writeConfig(t, `
evaluator:
  max_call_depth: ${DEPTH}
logging:
  level: ${LEVEL:-warn}
  output: ${LOG_DIR:-logs}/wesly.log
`)

	cfg, err := Load(path, envFrom(map[string]string{"DEPTH": "42"}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Evaluator.MaxCallDepth != 42 {
		t.Errorf("expected depth 42, got %d", cfg.Evaluator.MaxCallDepth)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected default level warn, got %s", cfg.Logging.Level)
	}
	if !filepath.IsAbs(cfg.Logging.Output) || !strings.HasSuffix(cfg.Logging.Output, filepath.Join("logs", "wesly.log")) {
		t.Errorf("expected log path resolved against the config dir, got %s", cfg.Logging.Output)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := envFrom(map[string]string{"NAME": "wes"})
	tests := []struct {
		input    string
		expected string
	}{
		{"a: ${NAME}", "a: wes"},
		{"a: ${MISSING}", "a: "},
		{"a: ${MISSING:-fallback}", "a: fallback"},
		{"a: ${NAME:-fallback}", "a: wes"},
		{"a: $NAME", "a: $NAME"},
	}
	for _, tt := range tests {
		if got := string(interpolateEnv([]byte(tt.input), getenv)); got != tt.expected {
			t.Errorf("interpolateEnv(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadSearchOrder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("env var", func(t *testing.T) {
		path := writeConfig(t, "repl:\n  prompt: \"env> \"\n")
		cfg, resolved, err := LoadWithPath("", envFrom(map[string]string{"WESLY_CONFIG": path}))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.REPL.Prompt != "env> " || resolved == "" {
			t.Errorf("config from WESLY_CONFIG not used: %q %q", cfg.REPL.Prompt, resolved)
		}
	})

	t.Run("explicit path wins", func(t *testing.T) {
		envPath := writeConfig(t, "repl:\n  prompt: \"env> \"\n")
		explicit := writeConfig(t, "repl:\n  prompt: \"flag> \"\n")
		cfg, err := Load(explicit, envFrom(map[string]string{"WESLY_CONFIG": envPath}))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.REPL.Prompt != "flag> " {
			t.Errorf("expected explicit config, got prompt %q", cfg.REPL.Prompt)
		}
	})

	t.Run("defaults when nothing is found", func(t *testing.T) {
		cfg, resolved, err := LoadWithPath("", envFrom(nil))
		if err != nil {
			t.Fatal(err)
		}
		if resolved != "" || cfg.Evaluator.MaxCallDepth != 10000 {
			t.Errorf("expected defaults, got %q %+v", resolved, cfg.Evaluator)
		}
	})

	t.Run("home config", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		dir := filepath.Join(home, ".config", "wesly")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "wesly.yaml"), []byte("watch:\n  debounce: 1s\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load("", envFrom(nil))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Watch.Debounce != time.Second {
			t.Errorf("expected home config, got debounce %s", cfg.Watch.Debounce)
		}
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing explicit file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "config file not found",
		},
		{
			name:    "missing env file",
			path:    func(t *testing.T) string { return "" },
			env:     map[string]string{"WESLY_CONFIG": "/does/not/exist.yaml"},
			wantErr: "WESLY_CONFIG file not found",
		},
		{
			name:    "bad yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "evaluator: [") },
			wantErr: "failed to parse config",
		},
		{
			name:    "invalid values",
			path:    func(t *testing.T) string { return writeConfig(t, "evaluator:\n  max_call_depth: 0\n") },
			wantErr: "max_call_depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t), envFrom(tt.env))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		version string
		wantErr []string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name: "every problem is reported",
			modify: func(c *Config) {
				c.Evaluator.MaxCallDepth = 0
				c.REPL.HistoryLimit = -1
				c.Watch.Debounce = -time.Second
				c.Logging.Level = "loud"
				c.Logging.Format = "xml"
			},
			wantErr: []string{
				"max_call_depth: 0",
				"history_limit: -1",
				"watch.debounce",
				"invalid log level: loud",
				"invalid log format: xml",
			},
		},
		{
			name:    "satisfied requires",
			modify:  func(c *Config) { c.Requires = ">=0.3.0 <1.0.0" },
			version: "0.3.0",
		},
		{
			name:    "unsatisfied requires",
			modify:  func(c *Config) { c.Requires = ">=9.0.0" },
			version: "0.3.0",
			wantErr: []string{`does not satisfy requires ">=9.0.0"`},
		},
		{
			name:    "requires checked without a version only for syntax",
			modify:  func(c *Config) { c.Requires = ">=9.0.0" },
			version: "",
		},
		{
			name:    "malformed requires",
			modify:  func(c *Config) { c.Requires = "not a range" },
			wantErr: []string{"invalid requires"},
		},
		{
			name:    "malformed version",
			modify:  func(c *Config) { c.Requires = ">=1.0.0" },
			version: "one",
			wantErr: []string{`invalid wesly version "one"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := Validate(cfg, tt.version)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error containing %q, got:\n%v", want, err)
				}
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wesly.log")
	log, closeLog, err := NewLogger(LoggingConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatal(err)
	}

	log.Info("hidden")
	log.Warn("shown", "file", "a.wes")
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"file":"a.wes"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestNewLoggerStderr(t *testing.T) {
	log, closeLog, err := NewLogger(Defaults().Logging)
	if err != nil {
		t.Fatal(err)
	}
	if log == nil {
		t.Fatal("expected a logger")
	}
	if err := closeLog(); err != nil {
		t.Errorf("stderr closer should be a no-op, got %v", err)
	}
	if _, _, err := NewLogger(LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")}); err == nil {
		t.Error("expected an error for an unwritable log path")
	}
}
