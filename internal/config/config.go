// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PushTimeout bounds every remote-write HTTP request.
const PushTimeout = 30 * time.Second

// Environment variables read by applyEnvOverrides.
const (
	EnvRemoteWriteURL      = "AGEMON_REMOTE_WRITE_URL"
	EnvRemoteWriteUsername = "AGEMON_REMOTE_WRITE_USERNAME"
	EnvRemoteWritePassword = "AGEMON_REMOTE_WRITE_PASSWORD"
	EnvHostname            = "AGEMON_HOSTNAME"
	EnvLogLevel            = "AGEMON_LOG_LEVEL"
	EnvTelemetryAddress    = "AGEMON_TELEMETRY_ADDRESS"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all agent configuration.
type Config struct {
	RemoteWrite RemoteWriteConfig `yaml:"remote_write"`
	Collection  CollectionConfig  `yaml:"collection"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// RemoteWriteConfig holds the push destination and optional Basic-auth credentials.
type RemoteWriteConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HasBasicAuth reports whether both credentials are set.
func (c RemoteWriteConfig) HasBasicAuth() bool {
	return c.Username != "" && c.Password != ""
}

// CollectionConfig holds metric collection settings.
type CollectionConfig struct {
	Interval Duration `yaml:"interval"`
	// Hostname overrides the OS hostname in the hostname label.
	Hostname string `yaml:"hostname"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// TelemetryConfig holds the agent self-metrics endpoint. Empty disables it.
type TelemetryConfig struct {
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RemoteWrite: RemoteWriteConfig{
			URL: "http://localhost:9090/api/v1/write",
		},
		Collection: CollectionConfig{
			Interval: Duration{15 * time.Second},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take precedence over values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Zero values are treated as "not set" and skipped.
type CLIOverrides struct {
	Interval         time.Duration
	URL              string
	Username         string
	Password         string
	Hostname         string
	LogLevel         string
	LogFile          string
	TelemetryAddress string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > YAML file > defaults.
//
// An optional configPath argument controls file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value → use that path ("" means no file)
//
// An explicitly named file that cannot be read is an error; an
// auto-discovered one that vanished is ignored.
func LoadLayered(cli CLIOverrides, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	var filePath string
	explicit := len(configPath) > 0
	if explicit {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case explicit:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyCLIOverrides(cfg, cli)

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv(EnvRemoteWriteURL); url != "" {
		cfg.RemoteWrite.URL = url
	}
	if user := os.Getenv(EnvRemoteWriteUsername); user != "" {
		cfg.RemoteWrite.Username = user
	}
	if pass := os.Getenv(EnvRemoteWritePassword); pass != "" {
		cfg.RemoteWrite.Password = pass
	}
	if host := os.Getenv(EnvHostname); host != "" {
		cfg.Collection.Hostname = host
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if addr := os.Getenv(EnvTelemetryAddress); addr != "" {
		cfg.Telemetry.Address = addr
	}
}

func applyCLIOverrides(cfg *Config, cli CLIOverrides) {
	if cli.Interval != 0 {
		cfg.Collection.Interval = Duration{cli.Interval}
	}
	if cli.URL != "" {
		cfg.RemoteWrite.URL = cli.URL
	}
	if cli.Username != "" {
		cfg.RemoteWrite.Username = cli.Username
	}
	if cli.Password != "" {
		cfg.RemoteWrite.Password = cli.Password
	}
	if cli.Hostname != "" {
		cfg.Collection.Hostname = cli.Hostname
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFile != "" {
		cfg.Logging.File = cli.LogFile
	}
	if cli.TelemetryAddress != "" {
		cfg.Telemetry.Address = cli.TelemetryAddress
	}
}

// Validate checks that the configuration can drive the agent.
// The remote-write URL is only checked for presence; a malformed URL fails
// each push individually and is reported in the logs.
func (c *Config) Validate() error {
	if c.RemoteWrite.URL == "" {
		return fmt.Errorf("remote write URL is required")
	}
	if c.Collection.Interval.Duration <= 0 {
		return fmt.Errorf("collection interval must be positive (got: %s)", c.Collection.Interval.Duration)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
