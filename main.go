package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vehicle-story-pipeline/badges"
	"vehicle-story-pipeline/config"
	"vehicle-story-pipeline/database"
	"vehicle-story-pipeline/gemini"
	"vehicle-story-pipeline/handlers"
	"vehicle-story-pipeline/llm"
	"vehicle-story-pipeline/metrics"
	"vehicle-story-pipeline/middleware"
	"vehicle-story-pipeline/openai"
	"vehicle-story-pipeline/rabbitmq"
	"vehicle-story-pipeline/ratings"
	"vehicle-story-pipeline/search"
	"vehicle-story-pipeline/storage"
	"vehicle-story-pipeline/story"
)

func main() {
	// Load .env if present, real env vars win
	_ = godotenv.Load()

	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	metrics.Register()

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}
	if cfg.SeedDemoVehicle {
		if err := db.SeedDemoVehicle(context.Background()); err != nil {
			log.WithError(err).Warn("demo vehicle seeding failed")
		}
	}

	// Pick the language model provider
	var model llm.Client
	var vision llm.Vision
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required for the gemini provider")
		}
		client := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		model, vision = client, client
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required")
		}
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		model, vision = client, client
	}
	log.Infof("language model provider: %s", model.SourceName())

	// Media capabilities always run on OpenAI
	var images llm.ImageGenerator
	var speech llm.Speech
	var transcriber llm.Transcriber
	if cfg.OpenAIAPIKey != "" {
		media := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		images, speech, transcriber = media, media, media
	} else {
		log.Warn("OPENAI_API_KEY not set, stories ship without imagery and narration")
	}

	// Optional collaborators
	var searcher llm.Searcher
	if cfg.SearchAPIKey != "" {
		searcher = search.NewClient(cfg.SearchAPIKey)
	}
	var publisher story.EventPublisher
	if cfg.RabbitMQURL != "" {
		p := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		defer p.Close()
		publisher = p
	}

	resolver := badges.NewResolver(
		searcher,
		model,
		ratings.NewNHTSAClient(cfg.NHTSABaseURL),
		ratings.NewEPAClient(cfg.EPABaseURL),
	).WithLimits(cfg.ProviderTimeout, cfg.MaxSearchChars)

	uploader := storage.NewClient(cfg.StorageBaseURL, cfg.StoragePublicURL, cfg.StorageAuthToken)

	pipeline := story.NewPipeline(db, publisher, resolver,
		model, images, vision, speech, transcriber, uploader,
		cfg.SceneConcurrency)

	// Initialize handlers
	h := handlers.NewHandlers(db, pipeline)

	// Setup HTTP server
	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v3")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/vehicles", h.CreateVehicle)
		api.POST("/stories", middleware.RateLimit(cfg.TriggerRatePerMinute, time.Minute), h.TriggerStory)
		api.GET("/stories/:id", h.GetStory)
		api.GET("/runs/:id", h.GetRun)
		api.GET("/stats", h.GetStats)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}
