package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AnyUserName/imgfit/internal/bytesize"
	"github.com/AnyUserName/imgfit/internal/encoder"
	"github.com/AnyUserName/imgfit/internal/logger"
	"github.com/AnyUserName/imgfit/internal/profile"
	"github.com/AnyUserName/imgfit/internal/targetsize"
	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	Profile     string            `mapstructure:"profile"`
	Target      string            `mapstructure:"target"` // e.g. "500KB"; empty means the profile's budget
	Search      SearchConfig      `mapstructure:"search"`
	Output      OutputConfig      `mapstructure:"output"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// SearchConfig tunes the target-size search. Zero values defer to the profile.
type SearchConfig struct {
	StepsPerPhase   int     `mapstructure:"steps_per_phase"`
	MinQuality      float64 `mapstructure:"min_quality"`
	MinScale        float64 `mapstructure:"min_scale"`
	ScaleQuality    float64 `mapstructure:"scale_quality"`
	FallbackScale   float64 `mapstructure:"fallback_scale"`
	FallbackQuality float64 `mapstructure:"fallback_quality"`
}

// OutputConfig controls where and how results are written
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // force an output format; empty keeps the source's
	Suffix string `mapstructure:"suffix"` // appended to the base name before the extension
	Report bool   `mapstructure:"report"` // write imgfit.report.json into Dir
}

// PerformanceConfig contains performance tuning settings
type PerformanceConfig struct {
	Workers int `mapstructure:"workers"` // 0 = NumCPU
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
	JSON       bool   `mapstructure:"json"` // JSON console output instead of text
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Profile: profile.DefaultName,
		Output: OutputConfig{
			Dir:    "./imgfit_out",
			Suffix: "_exact",
			Report: true,
		},
		Logging: loggingDefaults(logger.DefaultConfig()),
	}
}

func loggingDefaults(l logger.LoggerConfig) LoggingConfig {
	return LoggingConfig{
		Level:      l.Level,
		FilePath:   l.FilePath,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
		Compress:   l.Compress,
		JSON:       l.JSON,
	}
}

// Load reads configuration from path (or imgfit.yaml in the usual places
// when path is empty) layered over defaults, with IMGFIT_* environment
// overrides such as IMGFIT_SEARCH_SCALE_QUALITY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("imgfit")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/imgfit")
	}

	v.SetEnvPrefix("IMGFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply even
// when no config file sets them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("profile", d.Profile)
	v.SetDefault("target", d.Target)
	v.SetDefault("search.steps_per_phase", d.Search.StepsPerPhase)
	v.SetDefault("search.min_quality", d.Search.MinQuality)
	v.SetDefault("search.min_scale", d.Search.MinScale)
	v.SetDefault("search.scale_quality", d.Search.ScaleQuality)
	v.SetDefault("search.fallback_scale", d.Search.FallbackScale)
	v.SetDefault("search.fallback_quality", d.Search.FallbackQuality)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.suffix", d.Output.Suffix)
	v.SetDefault("output.report", d.Output.Report)
	v.SetDefault("performance.workers", d.Performance.Workers)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
	v.SetDefault("logging.json", d.Logging.JSON)
}

// Validate checks value ranges and normalizes formats.
func (c *Config) Validate() error {
	if c.Target != "" {
		n, err := bytesize.Parse(c.Target)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("target must be positive: %s", c.Target)
		}
	}

	s := c.Search
	if s.StepsPerPhase < 0 {
		return fmt.Errorf("search.steps_per_phase must not be negative: %d", s.StepsPerPhase)
	}
	for name, val := range map[string]float64{
		"min_quality":      s.MinQuality,
		"min_scale":        s.MinScale,
		"scale_quality":    s.ScaleQuality,
		"fallback_scale":   s.FallbackScale,
		"fallback_quality": s.FallbackQuality,
	} {
		if val < 0 || val > 1 {
			return fmt.Errorf("search.%s must be within [0, 1]: %v", name, val)
		}
	}

	if c.Output.Format != "" {
		c.Output.Format = encoder.NormalizeFormat(c.Output.Format)
		switch c.Output.Format {
		case "jpeg", "png", "webp", "avif":
		default:
			return fmt.Errorf("invalid output.format: %s (valid: jpeg, png, webp, avif)", c.Output.Format)
		}
	}

	if c.Performance.Workers < 0 {
		return fmt.Errorf("performance.workers must not be negative: %d", c.Performance.Workers)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

// TargetBytes resolves the byte budget: the explicit target if set,
// otherwise the profile's.
func (c *Config) TargetBytes() (int64, error) {
	if c.Target == "" {
		return profile.Get(c.Profile).Target, nil
	}
	return bytesize.Parse(c.Target)
}

// SearchOptions merges profile tuning with explicit search settings.
func (c *Config) SearchOptions() targetsize.Options {
	opts := profile.Get(c.Profile).Options()
	if c.Search.StepsPerPhase > 0 {
		opts.StepsPerPhase = c.Search.StepsPerPhase
	}
	if c.Search.ScaleQuality > 0 {
		opts.ScaleQuality = c.Search.ScaleQuality
	}
	opts.MinQuality = c.Search.MinQuality
	opts.MinScale = c.Search.MinScale
	opts.FallbackScale = c.Search.FallbackScale
	opts.FallbackQuality = c.Search.FallbackQuality
	return opts
}
