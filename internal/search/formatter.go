package search

import "context"

// Formatter turns a ranked result list into a human-readable answer.
//
// It is a pure formatting step over an already-ranked list: implementations
// must not re-rank or augment the results. Substitutable with a
// deterministic stub in tests.
type Formatter interface {
	Format(ctx context.Context, query string, results []Result) (string, error)
}
