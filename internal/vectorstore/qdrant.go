package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("lizd.vectorstore.qdrant")

// collectionNamePattern validates collection names.
// Pattern: lowercase letters, numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// Config holds configuration for the Qdrant gRPC client.
type Config struct {
	// Host is the Qdrant server hostname.
	Host string

	// Port is the Qdrant gRPC port (6334), not the HTTP REST port.
	Port int

	// APIKey is the Qdrant credential. Required for Qdrant Cloud.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// Distance is the similarity metric for created collections.
	// Default: Cosine.
	Distance qdrant.Distance

	// MaxRetries is the retry budget for transient failures. Default: 3.
	MaxRetries int

	// RetryBackoff is the initial backoff duration, doubled per retry.
	// Default: 1s.
	RetryBackoff time.Duration

	// MaxMessageSize is the maximum gRPC message size in bytes.
	// Default: 50MB, sized for 3072-dim float batches of 128 points.
	MaxMessageSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Distance == 0 {
		c.Distance = qdrant.Distance_Cosine
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	return nil
}

// ValidateCollectionName validates a collection name.
// Rejects uppercase, special characters and spaces.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match ^[a-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// IsTransientError reports whether an error should be retried.
// True for network timeouts and temporary unavailability; false for invalid
// arguments, not found, or authentication failures.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	st, ok := status.FromError(err)
	if !ok {
		return false
	}

	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// QdrantStore is an Index implementation using Qdrant's native gRPC client.
//
// gRPC transport avoids the REST layer's payload limits, which matters for
// batches of 3072-dim vectors.
type QdrantStore struct {
	client *qdrant.Client
	config Config
}

// NewQdrantStore creates a QdrantStore and verifies connectivity with a
// health check.
func NewQdrantStore(config Config) (*QdrantStore, error) {
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &QdrantStore{
		client: client,
		config: config,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: health check: %v", ErrConnectionFailed, err)
	}

	return store, nil
}

// Close closes the Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// retryOperation retries an operation with exponential backoff on
// transient errors.
func (s *QdrantStore) retryOperation(ctx context.Context, operationName string, operation func() error) error {
	backoff := s.config.RetryBackoff

	for attempt := 0; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if !IsTransientError(err) {
			return fmt.Errorf("%s failed (permanent): %w", operationName, err)
		}

		if attempt == s.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", operationName, s.config.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operationName, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// CollectionExists checks whether a collection exists. Returns an error only
// when the check itself fails, so connectivity problems are never mistaken
// for absence.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.CollectionExists")
	defer span.End()

	span.SetAttributes(attribute.String("collection", collection))

	if err := ValidateCollectionName(collection); err != nil {
		return false, err
	}

	var exists bool
	err := s.retryOperation(ctx, "collection_exists", func() error {
		var err error
		exists, err = s.client.CollectionExists(ctx, collection)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("checking collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return exists, nil
}

// CreateCollection creates a collection with the given vector size and the
// configured distance metric.
func (s *QdrantStore) CreateCollection(ctx context.Context, collection string, vectorSize uint64) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.CreateCollection")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int64("vector_size", int64(vectorSize)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	err := s.retryOperation(ctx, "create_collection", func() error {
		return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     vectorSize,
				Distance: s.config.Distance,
			}),
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// EnsureCollection creates the collection if it does not exist. An existing
// collection is left as is, without validating its dimension or metric.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.CreateCollection(ctx, collection, vectorSize)
}

// UpsertBatch stores points in a single upsert call with wait=true, so the
// batch is durably applied before the call returns.
func (s *QdrantStore) UpsertBatch(ctx context.Context, collection string, points []Point) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.UpsertBatch")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("point_count", len(points)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(points) == 0 {
		return ErrEmptyBatch
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		}
	}

	err := s.retryOperation(ctx, "upsert", func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         qdrantPoints,
			Wait:           qdrant.PtrOf(true),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upserting %d points to collection %s: %w", len(points), collection, err)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// Query returns the k nearest points with payloads, ordered by descending
// score as reported by the index.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k uint64) ([]SearchHit, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Query")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int64("k", int64(k)),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if k == 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	var scored []*qdrant.ScoredPoint
	err := s.retryOperation(ctx, "query", func() error {
		res, err := s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(k),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		scored = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	hits := make([]SearchHit, len(scored))
	for i, point := range scored {
		hits[i] = SearchHit{
			ID:      point.GetId().GetNum(),
			Score:   point.GetScore(),
			Payload: payloadToMap(point.GetPayload()),
		}
	}

	span.SetAttributes(attribute.Int("hit_count", len(hits)))
	span.SetStatus(codes.Ok, "success")
	return hits, nil
}

// payloadToMap converts a Qdrant payload into plain Go values.
func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[key] = v.StringValue
		case *qdrant.Value_IntegerValue:
			out[key] = v.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[key] = v.DoubleValue
		case *qdrant.Value_BoolValue:
			out[key] = v.BoolValue
		}
	}
	return out
}

// Ensure QdrantStore implements the Index interface.
var _ Index = (*QdrantStore)(nil)
