// ABOUTME: Client configuration for the feedback API connection
// ABOUTME: Layers defaults, a YAML file at XDG paths, .env and environment overrides

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG directories used for config, data and logs.
	AppName = "feedback"

	// ConfigFileName is the YAML file under the XDG config dir.
	ConfigFileName = "config.yaml"

	DefaultAPIURL   = "http://localhost:5000/api"
	DefaultTimeout  = 15 * time.Second
	DefaultLogLevel = "info"
)

// Config holds connection and logging settings.
type Config struct {
	// APIURL is the base URL of the remote feedback store.
	APIURL string `yaml:"api_url"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	LogLevel string `yaml:"log_level"`

	// LogFile defaults to $XDG_STATE_HOME/feedback/feedback.log.
	LogFile string `yaml:"log_file,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile(),
	}
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// DefaultLogFile returns the log location under XDG state home.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// Load reads the config file at Path, then .env, then environment overrides.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom is Load with an explicit file path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// .env is optional; it never overrides variables already in the environment
	_ = godotenv.Load()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides:
// - FEEDBACK_API_URL
// - FEEDBACK_TIMEOUT (Go duration, e.g. 10s)
// - FEEDBACK_LOG_LEVEL
// - FEEDBACK_LOG_FILE.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("FEEDBACK_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("FEEDBACK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FEEDBACK_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("FEEDBACK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FEEDBACK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile()
	}
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
