// Package config provides configuration loading for lizd.
//
// Configuration is read from environment variables into a typed Config.
// Credentials for the embedding provider and the vector index are required;
// the service refuses to start without them.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ErrMissingCredential indicates a required credential or endpoint is absent.
var ErrMissingCredential = errors.New("missing required configuration")

// Config holds the complete lizd configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Qdrant    QdrantConfig    `koanf:"qdrant"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Chat      ChatConfig      `koanf:"chat"`
	Search    SearchConfig    `koanf:"search"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// OpenAIConfig holds the embedding/chat provider credential.
type OpenAIConfig struct {
	APIKey string `koanf:"api_key"`
}

// QdrantConfig holds vector index connection settings.
//
// URL, when set, takes precedence: scheme and host/port are derived from it
// (https implies TLS). Otherwise Host/Port/UseTLS apply directly. Port is the
// gRPC port (6334 by default), not the HTTP REST port.
type QdrantConfig struct {
	URL        string `koanf:"url"`
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	APIKey     string `koanf:"api_key"`
	UseTLS     bool   `koanf:"use_tls"`
	Collection string `koanf:"collection"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

// ChatConfig holds the answer-formatting model settings.
type ChatConfig struct {
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
}

// SearchConfig holds query pipeline tunables.
type SearchConfig struct {
	TopKDefault int `koanf:"top_k_default"`
	TopKMax     int `koanf:"top_k_max"`
}

// IngestConfig holds ingestion pipeline tunables.
type IngestConfig struct {
	BatchSize int  `koanf:"batch_size"`
	StableIDs bool `koanf:"stable_ids"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// applyDefaults sets default values for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "resumos_liz"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-large"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-4o-mini"
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = 0.2
	}
	if cfg.Search.TopKDefault == 0 {
		cfg.Search.TopKDefault = 10
	}
	if cfg.Search.TopKMax == 0 {
		cfg.Search.TopKMax = 25
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 128
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// normalize derives Qdrant host/port/TLS from the URL form when one is given.
func normalize(cfg *Config) error {
	if cfg.Qdrant.URL == "" {
		return nil
	}

	u, err := url.Parse(cfg.Qdrant.URL)
	if err != nil {
		return fmt.Errorf("parsing qdrant url %q: %w", cfg.Qdrant.URL, err)
	}
	if u.Host == "" {
		return fmt.Errorf("qdrant url %q has no host", cfg.Qdrant.URL)
	}

	cfg.Qdrant.Host = u.Hostname()
	cfg.Qdrant.UseTLS = u.Scheme == "https"

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("parsing qdrant url port %q: %w", p, err)
		}
		cfg.Qdrant.Port = port
	}

	return nil
}

// Validate validates the configuration.
//
// Missing credentials are fatal: the service must not start serving without
// the embedding provider key, the Qdrant endpoint, and the Qdrant key.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredential)
	}
	if c.Qdrant.Host == "" {
		return fmt.Errorf("%w: QDRANT_URL or QDRANT_HOST", ErrMissingCredential)
	}
	if c.Qdrant.APIKey == "" {
		return fmt.Errorf("%w: QDRANT_API_KEY", ErrMissingCredential)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Qdrant.Port < 1 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("invalid qdrant port: %d (must be 1-65535)", c.Qdrant.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("invalid ingest batch size: %d (must be >= 1)", c.Ingest.BatchSize)
	}
	if c.Search.TopKDefault < 1 || c.Search.TopKDefault > c.Search.TopKMax {
		return fmt.Errorf("invalid top_k default: %d (must be in [1,%d])", c.Search.TopKDefault, c.Search.TopKMax)
	}

	return nil
}
