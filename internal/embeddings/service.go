// Package embeddings generates vector embeddings via an OpenAI-compatible
// API, wrapped behind langchaingo's embedder abstraction.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrEmptyInput indicates empty or blank input text.
	ErrEmptyInput = errors.New("empty input text")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrProvider indicates the upstream embedding provider failed.
	ErrProvider = errors.New("embedding provider error")
)

// Config holds configuration for the embedding service.
type Config struct {
	// BaseURL is the base URL for the embedding API.
	BaseURL string

	// Model is the embedding model, e.g. text-embedding-3-large.
	Model string

	// APIKey is the provider credential.
	APIKey string
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}
	return nil
}

// Service generates embeddings of a fixed dimensionality.
type Service struct {
	embedder  *embeddings.EmbedderImpl
	config    Config
	dimension int
}

// NewService creates an embedding service for the configured model.
func NewService(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	llm, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithBaseURL(config.BaseURL),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Service{
		embedder:  embedder,
		config:    config,
		dimension: DimensionForModel(config.Model),
	}, nil
}

// Dimension returns the embedding dimensionality of the configured model.
// Every vector stored in a collection must have this dimensionality.
func (s *Service) Dimension() int {
	return s.dimension
}

// EmbedDocuments generates embeddings for multiple texts, one vector per
// input. Blank texts are rejected before the provider is called.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts", ErrEmptyInput)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text %d is blank", ErrEmptyInput, i)
		}
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query text.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return vector, nil
}

// DimensionForModel returns the vector dimension for an embedding model.
//
// Supported models:
//   - text-embedding-3-large: 3072
//   - text-embedding-3-small: 1536
//   - text-embedding-ada-002: 1536
//
// Returns 3072 for unknown models (the service default).
func DimensionForModel(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	default:
		return 3072
	}
}
