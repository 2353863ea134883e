// Package config loads meshchat configuration from defaults, an optional config
// file, MESHCHAT_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	auditstore "github.com/rmacdonaldsmith/meshchat-go/internal/auditlog"
	"github.com/rmacdonaldsmith/meshchat-go/internal/transport/stream"
)

// EnvPrefix prefixes every environment override, e.g. MESHCHAT_RADIO_HOP_LIMIT=5
const EnvPrefix = "MESHCHAT"

// Config is the root application configuration.
type Config struct {
	// Endpoint is the radio to connect to; empty means discover and prompt
	Endpoint string `mapstructure:"endpoint"`

	// Endpoints lists known radios offered alongside discovered serial ports
	Endpoints []string `mapstructure:"endpoints"`

	Radio   RadioConfig   `mapstructure:"radio"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Log     LogConfig     `mapstructure:"log"`
	Console ConsoleConfig `mapstructure:"console"`
}

// RadioConfig controls the link to the radio.
type RadioConfig struct {
	Channel           uint32        `mapstructure:"channel"`
	HopLimit          uint32        `mapstructure:"hop_limit"`
	WantAck           bool          `mapstructure:"want_ack"`
	BaudRate          int           `mapstructure:"baud_rate"`
	ConfigTimeout     time.Duration `mapstructure:"config_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// AuditConfig controls the message log.
type AuditConfig struct {
	Disabled     bool          `mapstructure:"disabled"`
	Path         string        `mapstructure:"path"`
	QueueSize    int           `mapstructure:"queue_size"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
	MaxSizeMB    int           `mapstructure:"max_size_mb"`
	MaxBackups   int           `mapstructure:"max_backups"`
	MaxAgeDays   int           `mapstructure:"max_age_days"`
	Compress     bool          `mapstructure:"compress"`
}

// LogConfig defines diagnostic logger settings.
type LogConfig struct {
	// Level: trace, debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
}

// ConsoleConfig controls the chat display.
type ConsoleConfig struct {
	NoColor bool `mapstructure:"no_color"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Radio: RadioConfig{
			HopLimit:          3,
			BaudRate:          115200,
			ConfigTimeout:     30 * time.Second,
			HeartbeatInterval: 5 * time.Minute,
		},
		Audit: AuditConfig{
			Path:         auditstore.DefaultPath,
			QueueSize:    256,
			DrainTimeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"endpoint":  "endpoint",
	"channel":   "radio.channel",
	"hop-limit": "radio.hop_limit",
	"log-file":  "audit.path",
	"no-audit":  "audit.disabled",
	"log-level": "log.level",
	"no-color":  "console.no_color",
}

// Load reads configuration from path (if non-empty), otherwise it searches common
// locations. Flags present in flags override everything else.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults so env-only configs work
	v.SetDefault("endpoint", cfg.Endpoint)
	v.SetDefault("endpoints", cfg.Endpoints)
	v.SetDefault("radio.channel", cfg.Radio.Channel)
	v.SetDefault("radio.hop_limit", cfg.Radio.HopLimit)
	v.SetDefault("radio.want_ack", cfg.Radio.WantAck)
	v.SetDefault("radio.baud_rate", cfg.Radio.BaudRate)
	v.SetDefault("radio.config_timeout", cfg.Radio.ConfigTimeout)
	v.SetDefault("radio.heartbeat_interval", cfg.Radio.HeartbeatInterval)
	v.SetDefault("audit.disabled", cfg.Audit.Disabled)
	v.SetDefault("audit.path", cfg.Audit.Path)
	v.SetDefault("audit.queue_size", cfg.Audit.QueueSize)
	v.SetDefault("audit.drain_timeout", cfg.Audit.DrainTimeout)
	v.SetDefault("audit.max_size_mb", cfg.Audit.MaxSizeMB)
	v.SetDefault("audit.max_backups", cfg.Audit.MaxBackups)
	v.SetDefault("audit.max_age_days", cfg.Audit.MaxAgeDays)
	v.SetDefault("audit.compress", cfg.Audit.Compress)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("console.no_color", cfg.Console.NoColor)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("meshchat")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "meshchat"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid and normalises free-form fields
func (c *Config) Validate() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	case "":
		c.Log.Format = "console"
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}

	sc := c.StreamConfig()
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid radio config: %w", err)
	}

	if c.Audit.QueueSize < 0 {
		return errors.New("audit.queue_size cannot be negative")
	}
	if !c.Audit.Disabled {
		fc := c.AuditFileConfig()
		if err := fc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// StreamConfig returns the stream transport configuration.
func (c *Config) StreamConfig() stream.Config {
	return stream.Config{
		Channel:           c.Radio.Channel,
		HopLimit:          c.Radio.HopLimit,
		WantAck:           c.Radio.WantAck,
		BaudRate:          c.Radio.BaudRate,
		ConfigTimeout:     c.Radio.ConfigTimeout,
		HeartbeatInterval: c.Radio.HeartbeatInterval,
	}
}

// AuditFileConfig returns the audit file store configuration.
func (c *Config) AuditFileConfig() auditstore.FileConfig {
	return auditstore.FileConfig{
		Path:       c.Audit.Path,
		MaxSizeMB:  c.Audit.MaxSizeMB,
		MaxBackups: c.Audit.MaxBackups,
		MaxAgeDays: c.Audit.MaxAgeDays,
		Compress:   c.Audit.Compress,
	}
}

// AuditLoggerConfig returns the async audit logger configuration.
func (c *Config) AuditLoggerConfig() auditstore.Config {
	return auditstore.Config{QueueSize: c.Audit.QueueSize}
}
