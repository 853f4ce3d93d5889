// Package vectorstore wraps the vector index capability: a named collection
// of fixed-dimensionality vectors supporting batched upsert and k-nearest
// neighbor queries with payload retrieval.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrConnectionFailed indicates gRPC connection issues.
	ErrConnectionFailed = errors.New("failed to connect to Qdrant")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrEmptyBatch indicates an upsert with no points.
	ErrEmptyBatch = errors.New("empty point batch")
)

// Embedder generates vector embeddings from text.
//
// Implementations must produce vectors of a single fixed dimensionality;
// ingestion and query must share the same model, or relevance silently
// degrades.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension for the configured model.
	Dimension() int
}

// Index is the interface for vector index operations.
//
// The index exclusively owns persisted points; pipelines only propose them.
type Index interface {
	// EnsureCollection creates the collection if it does not exist.
	//
	// Idempotent: an existing collection is left untouched, without
	// validating that its dimension or metric match. The existence check is
	// explicit, so connectivity errors surface instead of triggering a
	// create.
	EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error

	// UpsertBatch stores points in a single atomic call: either every point
	// in the batch is durably stored or the call fails and nothing in this
	// batch is confirmed.
	UpsertBatch(ctx context.Context, collection string, points []Point) error

	// Query returns the k nearest points to vector with payloads, ordered by
	// descending score. Pure read.
	Query(ctx context.Context, collection string, vector []float32, k uint64) ([]SearchHit, error)

	// Close closes the index connection and releases resources.
	Close() error
}
