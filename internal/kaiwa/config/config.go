// Package config assembles the Kaiwa runtime configuration: environment
// variables first, optionally overridden by a YAML file. Every knob has a
// working default so a bare `kaiwa` start (with provider keys in the
// environment) needs no file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bdobrica/Kaiwa/common/environment"
)

// Provider holds the connection settings for one OpenAI-compatible endpoint.
type Provider struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full runtime configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for the server binary.
	ListenAddr string `yaml:"listen_addr"`

	// IntentsPath is the path to the intents JSON document.
	IntentsPath string `yaml:"intents_path"`

	// DBPath enables the SQLite transcript store when non-empty.
	DBPath string `yaml:"db_path"`

	// RedisAddr switches the embedding cache to Redis when non-empty.
	RedisAddr string `yaml:"redis_addr"`

	// Threshold is the minimum confidence required to accept a match.
	Threshold float64 `yaml:"threshold"`

	// FallbackTag is the reserved intent tag for low-confidence and error
	// outcomes.
	FallbackTag string `yaml:"fallback_tag"`

	// EmbeddingDim is the provider's embedding dimension, used for the
	// degraded-mode zero vector.
	EmbeddingDim int `yaml:"embedding_dim"`

	// RateLimit is the per-sender chat calls allowed per RateWindow.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `yaml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// Embedding configures the text-to-vector provider.
	Embedding Provider `yaml:"embedding"`
	// Completion configures the chat completion provider.
	Completion Provider `yaml:"completion"`
}

// FromEnv builds a Config from environment variables with defaults applied.
//
// When KAIWA_CONFIG_FILE is set, the named YAML file is loaded on top of the
// environment values; file values win. A missing or malformed file is an
// error (unlike the intents file, the config file was asked for explicitly).
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:   environment.StringOr("KAIWA_LISTEN_ADDR", ":8080"),
		IntentsPath:  environment.StringOr("KAIWA_INTENTS_FILE", "intents.json"),
		DBPath:       os.Getenv("KAIWA_DB_PATH"),
		RedisAddr:    os.Getenv("KAIWA_REDIS_ADDR"),
		Threshold:    environment.FloatOr("KAIWA_THRESHOLD", 0.6),
		FallbackTag:  environment.StringOr("KAIWA_FALLBACK_TAG", "fallback"),
		EmbeddingDim: environment.IntOr("KAIWA_EMBEDDING_DIM", 768),
		RateLimit:    environment.IntOr("KAIWA_RATE_LIMIT", 20),
		RateWindow:   environment.DurationOr("KAIWA_RATE_WINDOW", time.Minute),
		LogLevel:     environment.StringOr("LOG_LEVEL", "info"),
		LogFormat:    environment.StringOr("LOG_FORMAT", "text"),
		Embedding: Provider{
			APIKey:  os.Getenv("EMBEDDING_API_KEY"),
			BaseURL: os.Getenv("EMBEDDING_BASE_URL"),
			Model:   os.Getenv("EMBEDDING_MODEL"),
			Timeout: environment.DurationOr("EMBEDDING_TIMEOUT", 15*time.Second),
		},
		Completion: Provider{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   os.Getenv("LLM_MODEL"),
			Timeout: environment.DurationOr("LLM_TIMEOUT", 20*time.Second),
		},
	}

	if path := os.Getenv("KAIWA_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so the YAML overlay can
// distinguish "absent" from "zero".
type fileConfig struct {
	ListenAddr   *string        `yaml:"listen_addr"`
	IntentsPath  *string        `yaml:"intents_path"`
	DBPath       *string        `yaml:"db_path"`
	RedisAddr    *string        `yaml:"redis_addr"`
	Threshold    *float64       `yaml:"threshold"`
	FallbackTag  *string        `yaml:"fallback_tag"`
	EmbeddingDim *int           `yaml:"embedding_dim"`
	RateLimit    *int           `yaml:"rate_limit"`
	RateWindow   *time.Duration `yaml:"rate_window"`
	LogLevel     *string        `yaml:"log_level"`
	LogFormat    *string        `yaml:"log_format"`
	Embedding    *fileProvider  `yaml:"embedding"`
	Completion   *fileProvider  `yaml:"completion"`
}

type fileProvider struct {
	APIKey  *string        `yaml:"api_key"`
	BaseURL *string        `yaml:"base_url"`
	Model   *string        `yaml:"model"`
	Timeout *time.Duration `yaml:"timeout"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&c.ListenAddr, fc.ListenAddr)
	setString(&c.IntentsPath, fc.IntentsPath)
	setString(&c.DBPath, fc.DBPath)
	setString(&c.RedisAddr, fc.RedisAddr)
	if fc.Threshold != nil {
		c.Threshold = *fc.Threshold
	}
	setString(&c.FallbackTag, fc.FallbackTag)
	if fc.EmbeddingDim != nil {
		c.EmbeddingDim = *fc.EmbeddingDim
	}
	if fc.RateLimit != nil {
		c.RateLimit = *fc.RateLimit
	}
	if fc.RateWindow != nil {
		c.RateWindow = *fc.RateWindow
	}
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	applyProvider(&c.Embedding, fc.Embedding)
	applyProvider(&c.Completion, fc.Completion)
	return nil
}

func applyProvider(dst *Provider, src *fileProvider) {
	if src == nil {
		return
	}
	setString(&dst.APIKey, src.APIKey)
	setString(&dst.BaseURL, src.BaseURL)
	setString(&dst.Model, src.Model)
	if src.Timeout != nil {
		dst.Timeout = *src.Timeout
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (c *Config) validate() error {
	// Zero is rejected rather than accepted: the pipeline treats a zero
	// threshold as "use the default", so letting it through would silently
	// turn an accept-everything request into 0.6.
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("config: threshold must be in (0, 1], got %v", c.Threshold)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("config: embedding_dim must be positive, got %d", c.EmbeddingDim)
	}
	if c.FallbackTag == "" {
		return fmt.Errorf("config: fallback_tag must not be empty")
	}
	return nil
}
