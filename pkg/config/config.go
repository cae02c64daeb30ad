package config

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HUNKGRAPH_LOG_LEVEL.
const EnvPrefix = "HUNKGRAPH"

var (
	ErrInvalidCacheSize = errors.New("invalid analysis cache size")
	ErrInvalidWorkers   = errors.New("invalid pipeline worker count")
	ErrInvalidPattern   = errors.New("invalid exclude pattern")
	ErrInvalidDebounce  = errors.New("invalid watch debounce")
	ErrInvalidLogLevel  = errors.New("invalid log level")
)

// Config is the full hunkgraph configuration.
type Config struct {
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Pipeline PipelineConfig `json:"pipeline" mapstructure:"pipeline"`
	Watch    WatchConfig    `json:"watch" mapstructure:"watch"`
	Log      LogConfig      `json:"log" mapstructure:"log"`
}

type AnalysisConfig struct {
	// CacheSize is the number of analysis results kept for reuse.
	CacheSize int `json:"cache_size" mapstructure:"cache_size"`
}

type PipelineConfig struct {
	Workers int `json:"workers" mapstructure:"workers"`
	// Exclude holds doublestar globs; matching files skip symbol extraction.
	Exclude []string `json:"exclude" mapstructure:"exclude"`
}

type WatchConfig struct {
	Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
}

type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// DefaultExclude skips build output, dependency trees and lock files.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/target/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/.next/**",
	"dist/**",
	"build/**",
	"**/package-lock.json",
	"**/yarn.lock",
	"**/pnpm-lock.yaml",
	"**/Cargo.lock",
	"**/go.sum",
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{CacheSize: 64},
		Pipeline: PipelineConfig{
			Workers: runtime.GOMAXPROCS(0),
			Exclude: append([]string(nil), DefaultExclude...),
		},
		Watch: WatchConfig{Debounce: 300 * time.Millisecond},
		Log:   LogConfig{Level: "info"},
	}
}

// LoadConfig layers defaults, the optional config file (JSON, YAML or TOML by
// extension) and HUNKGRAPH_* environment variables, in increasing priority.
// An empty filename skips the file.
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"analysis.cache_size", "pipeline.workers", "pipeline.exclude", "watch.debounce", "log.level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("analysis.cache_size", defaults.Analysis.CacheSize)
	v.SetDefault("pipeline.workers", defaults.Pipeline.Workers)
	v.SetDefault("pipeline.exclude", defaults.Pipeline.Exclude)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("log.level", defaults.Log.Level)
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Analysis.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidCacheSize, c.Analysis.CacheSize))
	}
	if c.Pipeline.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidWorkers, c.Pipeline.Workers))
	}
	for _, pattern := range c.Pipeline.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern))
		}
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("%w: must not be negative, got %s", ErrInvalidDebounce, c.Watch.Debounce))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog level; unknown names
// fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	level, err := parseLevel(c.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
}
