// Package ingest materializes a corpus of text documents as indexed vectors.
//
// The pipeline is a single-threaded, sequential batch process: one document
// is embedded at a time and batches are upserted synchronously. A provider or
// index failure aborts the run; batches already upserted stay persisted, and
// re-running ingestion is the recovery path.
package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lizd/internal/identity"
	"github.com/fyrsmithlabs/lizd/internal/vectorstore"
)

// Config holds ingestion run settings.
type Config struct {
	// CorpusDir is the corpus root; *.txt files are discovered recursively.
	CorpusDir string

	// MetadataPath is the optional metadata CSV. A missing file is not an
	// error; identity falls back to filename parsing.
	MetadataPath string

	// Collection is the target collection name.
	Collection string

	// BatchSize is the upsert batch threshold. Default: 128. Larger batches
	// amortize round-trips but increase the failure blast radius.
	BatchSize int

	// StableIDs switches point ids from a run-local counter to a stable
	// hash of (doc id, filename), so re-ingestion overwrites instead of
	// appending duplicates.
	StableIDs bool
}

// Report summarizes an ingestion run. On failure it reflects how far
// processing reached.
type Report struct {
	// Documents is the number of corpus files read.
	Documents int

	// Skipped is the number of documents whose stripped text was empty.
	Skipped int

	// Indexed is the number of points confirmed persisted.
	Indexed int

	// Batches is the number of successful upsert calls.
	Batches int
}

// Pipeline ingests a corpus into the vector index.
type Pipeline struct {
	embedder vectorstore.Embedder
	index    vectorstore.Index
	logger   *zap.Logger
	config   Config
}

// New creates an ingestion pipeline.
func New(embedder vectorstore.Embedder, index vectorstore.Index, logger *zap.Logger, config Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CorpusDir == "" {
		return nil, fmt.Errorf("corpus directory required")
	}
	if config.Collection == "" {
		return nil, fmt.Errorf("collection required")
	}
	if config.BatchSize == 0 {
		config.BatchSize = 128
	}
	if config.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", config.BatchSize)
	}

	return &Pipeline{
		embedder: embedder,
		index:    index,
		logger:   logger,
		config:   config,
	}, nil
}

// Run executes one ingestion pass over the corpus.
//
// The returned Report is always non-nil; on error it counts the documents
// and batches confirmed before the failure. There is no rollback across
// batches.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	vectorSize := uint64(p.embedder.Dimension())
	if err := p.index.EnsureCollection(ctx, p.config.Collection, vectorSize); err != nil {
		return report, fmt.Errorf("ensuring collection %s: %w", p.config.Collection, err)
	}

	table, err := identity.LoadTable(p.config.MetadataPath)
	if err != nil {
		return report, err
	}

	files, err := discoverCorpus(p.config.CorpusDir)
	if err != nil {
		return report, err
	}

	p.logger.Info("starting ingestion",
		zap.String("corpus", p.config.CorpusDir),
		zap.String("collection", p.config.Collection),
		zap.Int("files", len(files)),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Bool("stable_ids", p.config.StableIDs))

	var (
		batch   []vectorstore.Point
		counter uint64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.index.UpsertBatch(ctx, p.config.Collection, batch); err != nil {
			return err
		}
		report.Indexed += len(batch)
		report.Batches++
		p.logger.Info("batch upserted",
			zap.Int("points", len(batch)),
			zap.Int("total_indexed", report.Indexed))
		batch = batch[:0]
		return nil
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return report, fmt.Errorf("after %d documents: reading %s: %w", report.Documents, path, err)
		}
		report.Documents++

		text := strings.TrimSpace(string(data))
		if text == "" {
			// An empty document carries no signal.
			report.Skipped++
			p.logger.Debug("skipping empty document", zap.String("file", path))
			continue
		}

		ident := identity.Resolve(path, table)

		vectors, err := p.embedder.EmbedDocuments(ctx, []string{text})
		if err != nil {
			return report, fmt.Errorf("after %d documents: embedding %s: %w", report.Documents, ident.Filename, err)
		}
		vector := vectors[0]
		if uint64(len(vector)) != vectorSize {
			return report, fmt.Errorf("after %d documents: embedding %s: got %d dimensions, collection declares %d",
				report.Documents, ident.Filename, len(vector), vectorSize)
		}

		var pointID uint64
		if p.config.StableIDs {
			pointID = StablePointID(ident.DocID, ident.Filename)
		} else {
			pointID = counter
			counter++
		}

		batch = append(batch, vectorstore.Point{
			ID:     pointID,
			Vector: vector,
			Payload: map[string]any{
				"id":      ident.DocID,
				"titulo":  ident.Title,
				"arquivo": ident.Filename,
			},
		})

		if len(batch) >= p.config.BatchSize {
			if err := flush(); err != nil {
				return report, fmt.Errorf("after %d documents: %w", report.Documents, err)
			}
		}
	}

	if err := flush(); err != nil {
		return report, fmt.Errorf("after %d documents: %w", report.Documents, err)
	}

	p.logger.Info("ingestion complete",
		zap.Int("documents", report.Documents),
		zap.Int("skipped", report.Skipped),
		zap.Int("indexed", report.Indexed),
		zap.Int("batches", report.Batches))

	return report, nil
}

// discoverCorpus lists all *.txt files under root recursively, sorted by
// path for deterministic processing order.
func discoverCorpus(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// StablePointID derives a point id from (doc id, filename) with FNV-1a,
// so the same document always maps to the same point.
func StablePointID(docID, filename string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(docID))
	h.Write([]byte{0})
	h.Write([]byte(filename))
	return h.Sum64()
}
