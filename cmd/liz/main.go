// Liz is the operator CLI for the lizd search service.
//
// It ingests a corpus of text documents into the Qdrant collection and runs
// one-shot queries against it, sharing configuration with the daemon.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lizd/internal/config"
	"github.com/fyrsmithlabs/lizd/internal/embeddings"
	"github.com/fyrsmithlabs/lizd/internal/logging"
	"github.com/fyrsmithlabs/lizd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "liz",
	Short: "Operate the lizd semantic article search service",
	Long: `Liz operates the lizd semantic article search service.

Configuration comes from the environment (a .env file is honored when
present): OPENAI_API_KEY, QDRANT_URL or QDRANT_HOST, and QDRANT_API_KEY are
required.

Examples:
  # Ingest a corpus with its metadata table
  liz ingest --corpus data/txt --metadata data/metadata.csv

  # Query the index
  liz search "cooperativas de crédito" --top-k 5`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("liz by Fyrsmith Labs\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Commit:  %s\n", gitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// clients bundles the long-lived connections a command needs.
type clients struct {
	cfg      *config.Config
	logger   *zap.Logger
	embedder *embeddings.Service
	store    *vectorstore.QdrantStore
}

func (c *clients) Close() {
	if c.store != nil {
		_ = c.store.Close()
	}
	if c.logger != nil {
		_ = logging.Sync(c.logger)
	}
}

// initClients loads configuration and connects the embedding client and the
// Qdrant store.
func initClients() (*clients, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: "console",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		APIKey:  cfg.OpenAI.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	store, err := vectorstore.NewQdrantStore(vectorstore.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}

	return &clients{
		cfg:      cfg,
		logger:   logger,
		embedder: embedder,
		store:    store,
	}, nil
}
