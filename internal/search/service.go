// Package search answers free-text queries with a ranked result list
// retrieved from the vector index, optionally synthesized into prose.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lizd/internal/vectorstore"
)

// ErrEmptyQuery indicates an empty or whitespace-only query. Recovered as a
// client error, never a server fault.
var ErrEmptyQuery = errors.New("empty query")

// NoResultsMessage is returned verbatim when a query matches nothing, without
// invoking the answer formatter.
const NoResultsMessage = "Não encontrei artigos relevantes para essa busca. Tente reformular com termos mais específicos."

// Result is one ranked search result.
type Result struct {
	ID    string  `json:"id"`
	Title string  `json:"titulo"`
	Score float32 `json:"score"`
}

// Response is the ranked answer to a query. Results are ordered by
// descending score as reported by the index.
type Response struct {
	Query      string
	TotalFound int
	Results    []Result
}

// AnsweredResponse is a Response with a formatted prose answer.
type AnsweredResponse struct {
	Response
	Answer string
}

// Config holds query pipeline settings.
type Config struct {
	// Collection is the collection to query.
	Collection string

	// TopKDefault is the result count when the caller does not specify one.
	// Default: 10.
	TopKDefault int

	// TopKMax caps the requested result count. Default: 25.
	TopKMax int
}

// Service is the query pipeline. Stateless per invocation; safe for
// unlimited concurrent use over the shared embedder and index connections.
type Service struct {
	embedder  vectorstore.Embedder
	index     vectorstore.Index
	formatter Formatter
	logger    *zap.Logger
	config    Config
}

// NewService creates a query pipeline.
//
// formatter may be nil when prose answers are not needed; SearchWithAnswer
// then only serves the no-results case.
func NewService(embedder vectorstore.Embedder, index vectorstore.Index, formatter Formatter, logger *zap.Logger, config Config) (*Service, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Collection == "" {
		return nil, fmt.Errorf("collection required")
	}
	if config.TopKDefault == 0 {
		config.TopKDefault = 10
	}
	if config.TopKMax == 0 {
		config.TopKMax = 25
	}

	return &Service{
		embedder:  embedder,
		index:     index,
		formatter: formatter,
		logger:    logger,
		config:    config,
	}, nil
}

// DefaultTopK returns the result count used when none is requested.
func (s *Service) DefaultTopK() int {
	return s.config.TopKDefault
}

// ClampTopK bounds a requested result count to [1, TopKMax].
func (s *Service) ClampTopK(k int) int {
	if k < 1 {
		return 1
	}
	if k > s.config.TopKMax {
		return s.config.TopKMax
	}
	return k
}

// Search embeds the query, retrieves the topK nearest points and maps them
// to ranked results.
//
// Hits whose payload has both an empty id and an empty title are filtered
// out as incomplete index entries. The index's descending-score order is
// preserved; TotalFound is the post-filter count.
func (s *Service) Search(ctx context.Context, query string, topK int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	k := s.ClampTopK(topK)

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.index.Query(ctx, s.config.Collection, vector, uint64(k))
	if err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", s.config.Collection, err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		result := Result{
			ID:    payloadString(hit.Payload, "id"),
			Title: payloadString(hit.Payload, "titulo"),
			Score: hit.Score,
		}
		if result.ID == "" && result.Title == "" {
			continue
		}
		results = append(results, result)
	}

	s.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Int("results", len(results)))

	return &Response{
		Query:      query,
		TotalFound: len(results),
		Results:    results,
	}, nil
}

// SearchWithAnswer runs Search and formats the ranked results into prose.
//
// An empty result list short-circuits to NoResultsMessage without calling
// the formatter.
func (s *Service) SearchWithAnswer(ctx context.Context, query string, topK int) (*AnsweredResponse, error) {
	resp, err := s.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return &AnsweredResponse{Response: *resp, Answer: NoResultsMessage}, nil
	}

	if s.formatter == nil {
		return nil, fmt.Errorf("no answer formatter configured")
	}

	answer, err := s.formatter.Format(ctx, resp.Query, resp.Results)
	if err != nil {
		return nil, fmt.Errorf("formatting answer: %w", err)
	}

	return &AnsweredResponse{Response: *resp, Answer: answer}, nil
}

// payloadString coerces a payload field to a string. Missing fields and nil
// payloads become the empty string; non-string values are stringified.
func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, ok := payload[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
