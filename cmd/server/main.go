package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"orchestratai-core/internal/adapter/api"
	"orchestratai-core/internal/adapter/client"
	"orchestratai-core/internal/adapter/store"
	"orchestratai-core/internal/domain/entity"
	"orchestratai-core/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		log.Println("Warning: .env.dev file not found, using system environment variables")
	}
	ctx := context.Background()

	redisAddr := os.Getenv("REDIS_ADDR")
	qdrantHost := os.Getenv("QDRANT_HOST")
	qdrantPort, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	tokenLimit, _ := strconv.Atoi(envOr("SESSION_TOKEN_LIMIT", "100000"))
	cacheTTL, _ := strconv.Atoi(envOr("CACHE_TTL_SECONDS", "3600"))

	// Redis backs both the semantic cache and the session token budget.
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Qdrant for knowledge-base retrieval
	qClient, err := qdrant.NewClient(&qdrant.Config{
		Host: qdrantHost,
		Port: qdrantPort,
	})
	if err != nil {
		log.Fatalf("failed to connect to qdrant: %v", err)
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		log.Fatalf("failed to init genai client: %v", err)
	}

	// Role-to-model mapping: routing analysis and the multi-source
	// strategies get the stronger model, everything latency-sensitive gets
	// the cheap one.
	providers := usecase.Providers{
		Analysis: client.NewGeminiClient(genaiClient, envOr("ORCHESTRATOR_ANALYSIS_MODEL", "gemini-2.5-pro")),
		Guide:    client.NewGeminiClient(genaiClient, envOr("ORCHESTRATOR_GUIDE_MODEL", "gemini-2.5-flash-lite")),
		Direct:   client.NewGeminiClient(genaiClient, envOr("DEFAULT_DIRECT_MODEL", "gemini-2.5-flash-lite")),
		RAG:      client.NewGeminiClient(genaiClient, envOr("DEFAULT_RAG_MODEL", "gemini-2.5-flash")),
		CAG:      client.NewGeminiClient(genaiClient, envOr("DEFAULT_CAG_MODEL", "gemini-2.5-flash-lite")),
		Hybrid:   client.NewGeminiClient(genaiClient, envOr("DEFAULT_HYBRID_MODEL", "gemini-2.5-pro")),
	}

	embedder := client.NewEmbedder(genaiClient, envOr("DEFAULT_EMBEDDING_MODEL", "text-embedding-004"))

	vectorStore := store.NewQdrantStore(qClient, os.Getenv("QDRANT_COLLECTION"), embedder)
	if err := vectorStore.InitCollection(ctx, 768); err != nil {
		log.Fatalf("failed to init qdrant collection: %v", err)
	}

	semanticCache := store.NewRedisCache(rdb, time.Duration(cacheTTL)*time.Second)
	tokenLimiter := store.NewRedisLimiter(rdb, tokenLimit)

	orchestrator := usecase.NewOrchestrator(providers, semanticCache, vectorStore, embedder, tokenLimiter)

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := embedder.CreateEmbedding(warmCtx, "warmup"); err != nil {
			log.Printf("[WARMER] Embedder warm-up failed: %v", err)
		}
		warmup := []entity.Message{{Role: entity.RoleUser, Content: "."}}
		if _, err := providers.Direct.Complete(warmCtx, warmup); err != nil {
			log.Printf("[WARMER] Gemini warm-up failed: %v", err)
		}

		log.Println("[WARMER] Pre-warm complete. Gateway is HOT.")
	}()

	app := fiber.New(fiber.Config{
		AppName: "OrchestratAI Gateway",
	})

	handler := api.NewChatHandler(orchestrator)
	api.SetupRouter(app, handler)

	log.Printf("OrchestratAI Gateway running on port %s", os.Getenv("PORT"))
	log.Fatal(app.Listen(":" + os.Getenv("PORT")))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
