package vectorstore

// Point is a vector with payload proposed for storage.
type Point struct {
	// ID is the numeric point id. Assigned at ingestion time, not derived
	// from the document id unless stable ids are enabled.
	ID uint64

	// Vector is the embedding. Its length must match the collection's
	// declared dimensionality.
	Vector []float32

	// Payload is the non-vector metadata stored with the point.
	// Keys used by lizd: id, titulo, arquivo.
	Payload map[string]any
}

// SearchHit is one nearest-neighbor result. Produced transiently per query,
// never persisted.
type SearchHit struct {
	// ID is the stored point id.
	ID uint64

	// Score is the similarity score under the collection's metric
	// (higher is more similar).
	Score float32

	// Payload is the stored metadata, or nil when the point has none.
	Payload map[string]any
}
