package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/driftwatch/driftwatch/internal/gate"
	"github.com/driftwatch/driftwatch/internal/gitlog"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

// Config holds all settings. Defaults reproduce the engine's stock policy;
// every threshold is tunable through the config file or environment.
type Config struct {
	// History controls git log extraction.
	History HistoryConfig `yaml:"history" mapstructure:"history"`

	// Baseline points at the persisted observation store.
	Baseline BaselineConfig `yaml:"baseline" mapstructure:"baseline"`

	// Thresholds are the statistical policy knobs.
	Thresholds ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`

	// FixKeywords mark a commit message as fix-flavored for the volatility
	// classification. Matched case-insensitively.
	FixKeywords []string `yaml:"fix_keywords" mapstructure:"fix_keywords"`

	// DetectorOperations maps detector names to operation families
	// (external, mutation, error, computation). Unknown names degrade to
	// computation.
	DetectorOperations map[string]string `yaml:"detector_operations" mapstructure:"detector_operations"`
}

type HistoryConfig struct {
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email"`
	MaxAgeDays  int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	MaxCommits  int    `yaml:"max_commits" mapstructure:"max_commits"`
}

type BaselineConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

type ThresholdConfig struct {
	MinObservations int     `yaml:"min_observations" mapstructure:"min_observations"`
	MinSurprise     float64 `yaml:"min_surprise" mapstructure:"min_surprise"`
	HighSurprise    float64 `yaml:"high_surprise" mapstructure:"high_surprise"`
	MaxWarnings     int     `yaml:"max_warnings" mapstructure:"max_warnings"`
	NewDays         int     `yaml:"new_days" mapstructure:"new_days"`
	VolatileDays    int     `yaml:"volatile_days" mapstructure:"volatile_days"`
	FixThreshold    int     `yaml:"fix_threshold" mapstructure:"fix_threshold"`
}

// Default returns the stock configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	ops := make(map[string]string, len(pattern.DefaultDetectorOperations))
	for name, op := range pattern.DefaultDetectorOperations {
		ops[name] = string(op)
	}

	return &Config{
		History: HistoryConfig{
			MaxAgeDays: gitlog.DefaultMaxAgeDays,
			MaxCommits: gitlog.DefaultMaxCommits,
		},
		Baseline: BaselineConfig{
			Path: filepath.Join(homeDir, ".driftwatch", "baseline.db"),
		},
		Thresholds: ThresholdConfig{
			MinObservations: 10,
			MinSurprise:     0.6,
			HighSurprise:    0.8,
			MaxWarnings:     5,
			NewDays:         pattern.DefaultNewDays,
			VolatileDays:    pattern.DefaultVolatileDays,
			FixThreshold:    pattern.DefaultFixThreshold,
		},
		FixKeywords:        append([]string(nil), gitlog.FixKeywords...),
		DetectorOperations: ops,
	}
}

// Load reads configuration from the given file, or from the standard search
// locations when path is empty. A missing config file is not an error; the
// defaults stand.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("history", cfg.History)
	v.SetDefault("baseline", cfg.Baseline)
	v.SetDefault("thresholds", cfg.Thresholds)
	v.SetDefault("fix_keywords", cfg.FixKeywords)
	v.SetDefault("detector_operations", cfg.DetectorOperations)

	v.SetEnvPrefix("DRIFTWATCH")
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".driftwatch")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".driftwatch"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Classifier builds a context classifier from this configuration.
func (c *Config) Classifier() *pattern.Classifier {
	ops := make(map[string]pattern.Operation, len(c.DetectorOperations))
	for name, raw := range c.DetectorOperations {
		op, ok := pattern.ParseOperation(raw)
		if !ok {
			op = pattern.OpComputation
		}
		ops[name] = op
	}

	return &pattern.Classifier{
		DetectorOperations: ops,
		FixKeywords:        c.FixKeywords,
		NewDays:            c.Thresholds.NewDays,
		VolatileDays:       c.Thresholds.VolatileDays,
		FixThreshold:       c.Thresholds.FixThreshold,
	}
}

// GatePolicy builds the warning gate policy from this configuration.
func (c *Config) GatePolicy() gate.Policy {
	return gate.Policy{
		MinSurprise:  c.Thresholds.MinSurprise,
		HighSurprise: c.Thresholds.HighSurprise,
		MaxWarnings:  c.Thresholds.MaxWarnings,
	}
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnv := filepath.Join(homeDir, ".driftwatch", ".env")
	if _, err := os.Stat(homeEnv); err == nil {
		godotenv.Load(homeEnv)
	}
}

func applyEnvOverrides(cfg *Config) {
	if email := os.Getenv("DRIFTWATCH_AUTHOR_EMAIL"); email != "" {
		cfg.History.AuthorEmail = email
	}
	if path := os.Getenv("DRIFTWATCH_BASELINE_PATH"); path != "" {
		cfg.Baseline.Path = expandPath(path)
	}
	if days := os.Getenv("DRIFTWATCH_MAX_AGE_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			cfg.History.MaxAgeDays = n
		}
	}
	if count := os.Getenv("DRIFTWATCH_MAX_COMMITS"); count != "" {
		if n, err := strconv.Atoi(count); err == nil {
			cfg.History.MaxCommits = n
		}
	}
	if min := os.Getenv("DRIFTWATCH_MIN_OBSERVATIONS"); min != "" {
		if n, err := strconv.Atoi(min); err == nil {
			cfg.Thresholds.MinObservations = n
		}
	}
	if max := os.Getenv("DRIFTWATCH_MAX_WARNINGS"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			cfg.Thresholds.MaxWarnings = n
		}
	}
}

func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}
