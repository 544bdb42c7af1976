// Package config holds the application configuration, loaded through viper
// from config.yaml, environment variables (VOYAGE_ prefix) and defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration object.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Distill DistillConfig `mapstructure:"distill" yaml:"distill"`
	Replay  ReplayConfig  `mapstructure:"replay" yaml:"replay"`
	Compare CompareConfig `mapstructure:"compare" yaml:"compare"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// StoreConfig locates the named-journey store on disk.
type StoreConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// DistillConfig exposes the distillation heuristics as named settings.
// These are approximations over UI conventions, not formal rules; tests
// probe their boundaries directly.
type DistillConfig struct {
	// ModifierWindow bounds how long a modifier keydown with no observed
	// keyup is still considered held. A keyup may be evicted from the log;
	// without this bound a missing keyup would pin the modifier for the
	// rest of the journey.
	ModifierWindow time.Duration `mapstructure:"modifier_window" yaml:"modifier_window"`
	// MaxLabelChars caps fallback labels taken from an interaction's own
	// text content, excluding modal body text.
	MaxLabelChars int `mapstructure:"max_label_chars" yaml:"max_label_chars"`
	// LabelDenylist filters generic framework component names and bare HTML
	// tag names out of fallback labels (regular expressions).
	LabelDenylist []string `mapstructure:"label_denylist" yaml:"label_denylist"`
	// MaxSnapshotLabelChars caps the per-item label derived from a
	// DataSource snapshot when falling back to an arbitrary string field.
	MaxSnapshotLabelChars int `mapstructure:"max_snapshot_label_chars" yaml:"max_snapshot_label_chars"`
}

// ReplayConfig tunes script generation and fill planning.
type ReplayConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// SettleWait is inserted after a mutating await before the next action:
	// UI re-render is not guaranteed merely because the network call finished.
	SettleWait time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
	// NoiseRoles are structural or unnamed roles that never make a usable
	// role-based locator.
	NoiseRoles []string `mapstructure:"noise_roles" yaml:"noise_roles"`
	// Fill-plan field matching scores. Exact normalized match beats
	// substring containment beats camelCase word overlap.
	ScoreExact     int `mapstructure:"score_exact" yaml:"score_exact"`
	ScoreSubstring int `mapstructure:"score_substring" yaml:"score_substring"`
	ScoreWordBase  int `mapstructure:"score_word_base" yaml:"score_word_base"`
}

// CompareConfig carries the default comparator ignore-list.
type CompareConfig struct {
	IgnoreAPIs []string `mapstructure:"ignore_apis" yaml:"ignore_apis"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "voyage-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("store.dir", ".voyage")

	v.SetDefault("distill.modifier_window", "500ms")
	v.SetDefault("distill.max_label_chars", 50)
	v.SetDefault("distill.label_denylist", []string{
		`^[A-Z][A-Za-z0-9]*(Component|View|Container|Wrapper)$`,
		`^(?i)(div|span|ul|ol|li|tr|td|th|svg|path|i|em|b|section|article)$`,
	})
	v.SetDefault("distill.max_snapshot_label_chars", 40)

	v.SetDefault("replay.base_url", "http://localhost:8080")
	v.SetDefault("replay.settle_wait", "250ms")
	v.SetDefault("replay.noise_roles", []string{"generic", "presentation", "none", "group", "document"})
	v.SetDefault("replay.score_exact", 1000)
	v.SetDefault("replay.score_substring", 100)
	v.SetDefault("replay.score_word_base", 1)

	v.SetDefault("compare.ignore_apis", []string{})
}

// NewDefaultConfig returns a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// NewFromViper unmarshals and validates a configuration from a viper object.
func NewFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Distill.ModifierWindow <= 0 {
		return fmt.Errorf("distill.modifier_window must be a positive duration")
	}
	if c.Distill.MaxLabelChars <= 0 {
		return fmt.Errorf("distill.max_label_chars must be a positive integer")
	}
	if c.Replay.ScoreExact <= c.Replay.ScoreSubstring {
		return fmt.Errorf("replay.score_exact must exceed replay.score_substring")
	}
	if c.Replay.ScoreSubstring <= c.Replay.ScoreWordBase {
		return fmt.Errorf("replay.score_substring must exceed replay.score_word_base")
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir is required")
	}
	return nil
}
