package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/lizd/internal/ingest"
)

var (
	ingestCorpus     string
	ingestMetadata   string
	ingestCollection string
	ingestBatchSize  int
	ingestStableIDs  bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestCorpus, "corpus", "data/txt", "Corpus root directory (*.txt discovered recursively)")
	ingestCmd.Flags().StringVar(&ingestMetadata, "metadata", "data/metadata.csv", "Metadata CSV path (optional; filename parsing is the fallback)")
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "", "Target collection (default: QDRANT_COLLECTION)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "Upsert batch size (default: INGEST_BATCH_SIZE)")
	ingestCmd.Flags().BoolVar(&ingestStableIDs, "stable-ids", false, "Derive point ids from (doc id, filename) so re-ingestion overwrites instead of duplicating")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a corpus of text documents into the vector index",
	Long: `Ingest embeds every *.txt document under the corpus root and upserts the
vectors into the collection in batches.

Documents whose stripped text is empty are skipped. A provider or index
failure aborts the run; batches already upserted stay persisted, and
re-running ingestion is the recovery path. Without --stable-ids a re-run
appends duplicate points with new ids.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := initClients()
		if err != nil {
			return err
		}
		defer c.Close()

		collection := ingestCollection
		if collection == "" {
			collection = c.cfg.Qdrant.Collection
		}
		batchSize := ingestBatchSize
		if batchSize == 0 {
			batchSize = c.cfg.Ingest.BatchSize
		}
		stableIDs := ingestStableIDs || c.cfg.Ingest.StableIDs

		pipeline, err := ingest.New(c.embedder, c.store, c.logger.Named("ingest"), ingest.Config{
			CorpusDir:    ingestCorpus,
			MetadataPath: ingestMetadata,
			Collection:   collection,
			BatchSize:    batchSize,
			StableIDs:    stableIDs,
		})
		if err != nil {
			return err
		}

		report, err := pipeline.Run(cmd.Context())
		if err != nil {
			fmt.Printf("Ingestion aborted: %d of %d documents indexed (%d batches, %d skipped)\n",
				report.Indexed, report.Documents, report.Batches, report.Skipped)
			return err
		}

		fmt.Printf("Ingestion complete: %d vectors in collection %q (%d documents, %d skipped, %d batches)\n",
			report.Indexed, collection, report.Documents, report.Skipped, report.Batches)
		return nil
	},
}
