// Lizd serves semantic article search over a Qdrant collection.
//
// The daemon embeds incoming queries with an OpenAI-compatible model,
// retrieves the nearest articles and serves them as ranked JSON, optionally
// synthesized into prose by the Liz formatter.
//
// Configuration is loaded from environment variables (a .env file is honored
// when present). The service refuses to start without OPENAI_API_KEY,
// QDRANT_URL (or QDRANT_HOST) and QDRANT_API_KEY.
//
// Usage:
//
//	# Start server
//	lizd
//
//	# Configure via environment
//	SERVER_PORT=8000 QDRANT_URL=https://qdrant.example.com:6334 lizd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lizd/internal/config"
	"github.com/fyrsmithlabs/lizd/internal/embeddings"
	lizdhttp "github.com/fyrsmithlabs/lizd/internal/http"
	"github.com/fyrsmithlabs/lizd/internal/logging"
	"github.com/fyrsmithlabs/lizd/internal/search"
	"github.com/fyrsmithlabs/lizd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  lizd           Start the search service\n")
			fmt.Fprintf(os.Stderr, "  lizd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("lizd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run initializes the service and blocks until ctx is cancelled.
//
//  1. Loads .env and validates configuration (missing credentials are fatal)
//  2. Initializes the logger
//  3. Creates the embedding client and the Qdrant store, once, shared by
//     all request handlers
//  4. Wires the query pipeline and the Liz formatter
//  5. Starts the HTTP server with graceful shutdown
func run(ctx context.Context) error {
	// Best-effort: absence of a .env file is fine, the environment may
	// already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("starting lizd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("collection", cfg.Qdrant.Collection),
		zap.String("embedding_model", cfg.Embedding.Model))

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		APIKey:  cfg.OpenAI.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedding service: %w", err)
	}

	logger.Info("embedding service initialized",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimension", embedder.Dimension()))

	store, err := vectorstore.NewQdrantStore(vectorstore.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to vector store: %w", err)
	}
	defer store.Close()

	logger.Info("vector store connected",
		zap.String("host", cfg.Qdrant.Host),
		zap.Int("port", cfg.Qdrant.Port))

	formatter, err := search.NewLiz(search.LizConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.Chat.Model,
		Temperature: cfg.Chat.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to create answer formatter: %w", err)
	}

	searcher, err := search.NewService(embedder, store, formatter, logger.Named("search"), search.Config{
		Collection:  cfg.Qdrant.Collection,
		TopKDefault: cfg.Search.TopKDefault,
		TopKMax:     cfg.Search.TopKMax,
	})
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}

	srv, err := lizdhttp.NewServer(searcher, logger.Named("http"), &lizdhttp.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	return srv.Start(ctx)
}
