package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvAPIKey holds the Anthropic credential. It is never read from YAML.
	EnvAPIKey = "ANTHROPIC_API_KEY"
	// EnvBaseURL optionally overrides completion.base_url.
	EnvBaseURL = "ANTHROPIC_BASE_URL"

	DefaultPort        = 5000
	DefaultBaseURL     = "https://api.anthropic.com"
	DefaultModel       = "claude-3-7-sonnet-20250219"
	DefaultMaxTokens   = 20000
	DefaultTemperature = 1.0
	DefaultTimeout     = 10 * time.Minute
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Completion CompletionConfig `yaml:"completion"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CompletionConfig describes how to reach the completion service.
type CompletionConfig struct {
	APIKey      string        `yaml:"-"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Headers     Headers       `yaml:"headers"`
}

// Headers contains additional HTTP headers to send with a provider request.
type Headers map[string]string

// Default returns the configuration used when no file is given.
func Default() Config {
	temperature := DefaultTemperature
	return Config{
		Server: ServerConfig{Port: DefaultPort},
		Completion: CompletionConfig{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			Temperature: &temperature,
			Timeout:     DefaultTimeout,
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env style file into the process
// environment. Variables already set are left untouched and a missing file is
// not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// Load reads optional YAML configuration from disk, overlays the environment
// and validates the result. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Completion.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.Completion.BaseURL = v
	}
}

// HasAPIKey reports whether a completion credential is configured.
func (c CompletionConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// TemperatureValue returns the configured sampling temperature.
func (c CompletionConfig) TemperatureValue() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Validate performs strict sanity checks on the configuration.
// A missing API key is not an error: the review client reports it per request.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}

	comp := c.Completion
	if strings.TrimSpace(comp.BaseURL) == "" {
		return errors.New("completion.base_url must be provided")
	}
	if strings.TrimSpace(comp.Model) == "" {
		return errors.New("completion.model must be provided")
	}
	if comp.MaxTokens <= 0 {
		return fmt.Errorf("completion.max_tokens must be positive, got %d", comp.MaxTokens)
	}
	if t := comp.TemperatureValue(); t < 0 || t > 1 {
		return fmt.Errorf("completion.temperature must be between 0 and 1, got %g", t)
	}
	if comp.Timeout < 0 {
		return fmt.Errorf("completion.timeout must not be negative, got %s", comp.Timeout)
	}

	for headerKey := range comp.Headers {
		if !isCanonicalHTTPHeader(headerKey) {
			return fmt.Errorf("completion: header %q is not a valid canonical HTTP header", headerKey)
		}
	}

	return nil
}

func isCanonicalHTTPHeader(header string) bool {
	if header == "" {
		return false
	}

	for _, r := range header {
		if !(r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
