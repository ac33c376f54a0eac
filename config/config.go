package config

import "time"

// Config represents the complete wesly tool configuration
type Config struct {
	BaseDir   string          `yaml:"-"` // directory containing the config file, for resolving relative paths
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	REPL      REPLConfig      `yaml:"repl"`
	Watch     WatchConfig     `yaml:"watch"`
	Logging   LoggingConfig   `yaml:"logging"`
	Requires  string          `yaml:"requires"` // semver range the running wesly must satisfy, e.g. ">=0.3.0 <1.0.0"
}

// EvaluatorConfig tunes program evaluation
type EvaluatorConfig struct {
	MaxCallDepth int  `yaml:"max_call_depth"`
	ShortCircuit bool `yaml:"short_circuit"` // && and || skip the right operand once decided
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	Prompt       string `yaml:"prompt"`
	HistoryFile  string `yaml:"history_file"` // empty disables history persistence
	HistoryLimit int    `yaml:"history_limit"`
}

// WatchConfig holds settings for --watch
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds diagnostic logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Evaluator: EvaluatorConfig{
			MaxCallDepth: 10000,
		},
		REPL: REPLConfig{
			Prompt:       ">> ",
			HistoryFile:  "~/.wesly_history",
			HistoryLimit: 1000,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
