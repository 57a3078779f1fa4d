package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"data-catalog/backend/internal/analysis"
	"data-catalog/backend/internal/api"
	"data-catalog/backend/internal/embedding"
	"data-catalog/backend/internal/graph"
	"data-catalog/backend/internal/search"
	"data-catalog/backend/pkg/config"
	"data-catalog/backend/pkg/logger"
)

func main() {
	// Load configuration first so the logger knows the environment
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting data catalog API server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize graph schema", zap.Error(err))
	}

	// The embedding and analysis layers need an API key. Without one the
	// catalog still serves CRUD and graph traversal.
	var embedder *embedding.Service
	var llmClient *analysis.Client
	if cfg.OpenAIAPIKey != "" {
		embedder = embedding.NewService(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		llmClient = analysis.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel)
	} else {
		log.Warn("OPENAI_API_KEY not set, embedding generation and analysis are disabled")
	}

	// Assign the concrete embedder to interface variables only when it
	// exists, so the nil checks downstream see a nil interface.
	var searchEmbedder search.Embedder
	var entityEmbedder api.EntityEmbedder
	if embedder != nil {
		searchEmbedder = embedder
		entityEmbedder = embedder
	}
	searcher := search.NewService(repo, searchEmbedder, cfg.SearchTopK, cfg.SearchThreshold)
	analyzer := analysis.NewService(llmClient, searcher, repo)

	server := api.NewServer(repo, entityEmbedder, searcher, analyzer)
	router := server.Router(cfg.IsProduction())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := repo.Close(); err != nil {
		log.Error("Failed to close repository", zap.Error(err))
	}

	log.Info("Server exited")
}
