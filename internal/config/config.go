// Package config provides configuration management for convertd using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxUploadBytes  = 500 * 1024 * 1024 // 500MB
	defaultRetention       = 24 * time.Hour
	defaultBitrateKbps     = 192
	defaultSampleRateHz    = 44100
	defaultQualityPercent  = 80
	defaultChannels        = "stereo"
	defaultCompression     = "medium"
	defaultCleanupCron     = "0 */15 * * * *" // every 15 minutes (6-field cron)
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	FFmpeg     FFmpegConfig     `mapstructure:"ffmpeg"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Cleanup    CleanupConfig    `mapstructure:"cleanup"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig holds file storage configuration. Upload and output
// directories are resolved under BaseDir unless absolute.
type StorageConfig struct {
	BaseDir   string `mapstructure:"base_dir"`
	UploadDir string `mapstructure:"upload_dir"`
	OutputDir string `mapstructure:"output_dir"`
	// Retention is how long converted files are kept before the scheduled
	// cleanup removes them.
	Retention time.Duration `mapstructure:"retention"`
	// MaxUploadSize caps the accepted upload body. Supports human-readable
	// values like "500MB" or raw byte counts.
	MaxUploadSize ByteSize `mapstructure:"max_upload_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`  // debug, info, warn, error
	Format    string `mapstructure:"format"` // json, text
	AddSource bool   `mapstructure:"add_source"`
}

// FFmpegConfig holds FFmpeg binary configuration.
type FFmpegConfig struct {
	BinaryPath string `mapstructure:"binary_path"` // empty = auto-detect
}

// ConversionConfig holds the default encoding parameters applied when a
// request omits a knob.
type ConversionConfig struct {
	BitrateKbps    int    `mapstructure:"bitrate_kbps"`
	SampleRateHz   int    `mapstructure:"sample_rate_hz"`
	Channels       string `mapstructure:"channels"`
	QualityPercent int    `mapstructure:"quality_percent"`
	Compression    string `mapstructure:"compression"`
}

// CleanupConfig holds scheduled cleanup configuration.
type CleanupConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"` // 6-field cron expression
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and are
// prefixed with CONVERTD_, using underscores for nesting.
// Example: CONVERTD_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/convertd")
		v.AddConfigPath("$HOME/.convertd")
	}

	v.SetEnvPrefix("CONVERTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults and env vars apply.
	}

	// The default decoder handles time.Duration but not TextUnmarshaler, so
	// ByteSize values like "500MB" need the text hook.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.output_dir", "converted")
	v.SetDefault("storage.retention", defaultRetention)
	v.SetDefault("storage.max_upload_size", defaultMaxUploadBytes)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("ffmpeg.binary_path", "")

	v.SetDefault("conversion.bitrate_kbps", defaultBitrateKbps)
	v.SetDefault("conversion.sample_rate_hz", defaultSampleRateHz)
	v.SetDefault("conversion.channels", defaultChannels)
	v.SetDefault("conversion.quality_percent", defaultQualityPercent)
	v.SetDefault("conversion.compression", defaultCompression)

	v.SetDefault("cleanup.enabled", true)
	v.SetDefault("cleanup.cron", defaultCleanupCron)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be positive")
	}
	if c.Storage.Retention <= 0 {
		return fmt.Errorf("storage.retention must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Conversion.BitrateKbps < 0 {
		return fmt.Errorf("conversion.bitrate_kbps must not be negative")
	}
	if c.Conversion.SampleRateHz <= 0 {
		return fmt.Errorf("conversion.sample_rate_hz must be positive")
	}
	if c.Conversion.QualityPercent < 0 || c.Conversion.QualityPercent > 100 {
		return fmt.Errorf("conversion.quality_percent must be between 0 and 100")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UploadPath returns the full path to the upload directory.
func (c *StorageConfig) UploadPath() string {
	if filepath.IsAbs(c.UploadDir) {
		return c.UploadDir
	}
	return filepath.Join(c.BaseDir, c.UploadDir)
}

// OutputPath returns the full path to the output directory.
func (c *StorageConfig) OutputPath() string {
	if filepath.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return filepath.Join(c.BaseDir, c.OutputDir)
}
