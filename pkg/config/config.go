// Package config loads facet's runtime configuration from facet.yaml and
// FACET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel/poly"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// KernelConfig holds settings for the reference kernel.
type KernelConfig struct {
	Tolerance      float64 `mapstructure:"tolerance"`
	FilletSegments int     `mapstructure:"fillet_segments"`
}

// EngineConfig holds settings for script evaluation.
type EngineConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
}

// ExportConfig controls where and how meshes are written.
type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	PerSolid bool   `mapstructure:"per_solid"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config holds all runtime configuration for the facet binary.
// Values are populated from facet.yaml, FACET_* env vars, and defaults.
type Config struct {
	Kernel KernelConfig `mapstructure:"kernel"`
	Engine EngineConfig `mapstructure:"engine"`
	Export ExportConfig `mapstructure:"export"`
	Log    LogConfig    `mapstructure:"log"`
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("kernel.tolerance", poly.DefaultTolerance)
	v.SetDefault("kernel.fillet_segments", poly.DefaultFilletSegments)
	v.SetDefault("engine.timeout", engine.EvalTimeout)
	v.SetDefault("engine.cache_size", engine.DefaultCacheSize)
	v.SetDefault("export.dir", "out")
	v.SetDefault("export.per_solid", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads configuration. An explicit path must exist; otherwise
// facet.yaml is looked up in the working directory and
// $HOME/.config/facet, and its absence is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("facet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "facet"))
		}
	}

	v.SetEnvPrefix("FACET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the kernel or engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Kernel.Tolerance <= 0:
		return fmt.Errorf("config: kernel.tolerance must be positive, got %g", c.Kernel.Tolerance)
	case c.Kernel.FilletSegments < 1:
		return fmt.Errorf("config: kernel.fillet_segments must be at least 1, got %d", c.Kernel.FilletSegments)
	case c.Engine.Timeout <= 0:
		return fmt.Errorf("config: engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// KernelOptions turns the kernel section into poly options.
func (c Config) KernelOptions(log *zap.Logger) []poly.Option {
	return []poly.Option{
		poly.WithTolerance(c.Kernel.Tolerance),
		poly.WithFilletSegments(c.Kernel.FilletSegments),
		poly.WithLogger(log),
	}
}

// NewEngine builds a script engine over a poly kernel configured from c.
func (c Config) NewEngine(log *zap.Logger) *engine.Engine {
	k := poly.New(c.KernelOptions(log)...)
	return engine.NewEngine(
		engine.WithKernel(k),
		engine.WithLogger(log),
		engine.WithTimeout(c.Engine.Timeout),
		engine.WithCacheSize(c.Engine.CacheSize),
	)
}

// NewLogger builds the process logger from the log section.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log.level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
