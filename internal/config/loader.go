package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from environment variables.
//
// Environment variables map to config keys by lowercasing and splitting on
// the first underscore (section.field_name pattern):
//
//	SERVER_PORT            -> server.port
//	OPENAI_API_KEY         -> openai.api_key
//	QDRANT_URL             -> qdrant.url
//	QDRANT_COLLECTION      -> qdrant.collection
//	EMBEDDING_MODEL        -> embedding.model
//	SEARCH_TOP_K_DEFAULT   -> search.top_k_default
//	INGEST_BATCH_SIZE      -> ingest.batch_size
//	LOG_LEVEL              -> log.level
//
// Defaults are applied for unset fields, then the result is validated.
// Missing credentials (OPENAI_API_KEY, QDRANT_URL/QDRANT_HOST,
// QDRANT_API_KEY) return ErrMissingCredential.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := normalize(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
