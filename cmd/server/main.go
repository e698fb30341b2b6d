package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveybuddy/internal/app"
	"surveybuddy/internal/config"
	"surveybuddy/internal/service"
	"surveybuddy/internal/transport/rest"
	"surveybuddy/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Base URL:  %s", aiConfig.BaseURL)
	log.Printf("  Model:     %s", aiConfig.Model)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:   configured ✓")
	} else {
		log.Println("  API Key:   NOT SET (chat replies will fail)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("surveybuddy")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories and caches
	deps := app.New(db, rdb)

	// Initialize services
	llmClient := service.NewLLMClientWithConfig(aiConfig)
	extractorClient := service.NewExtractorClient(cfg.ExtractorURL)
	chatSvc := service.NewChatService(llmClient, extractorClient, deps.MessageRepo, deps.SessionRepo, deps.SettingsCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	chatSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		ChatService: chatSvc,
		Settings:    deps.SettingsCache,
		WSHub:       wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST/GET /v1/sessions")
		log.Println("  POST/GET /v1/sessions/{id}/messages")
		log.Println("  GET  /v1/sessions/{id}/survey")
		log.Println("  PUT  /v1/sessions/{id}/survey/goal")
		log.Println("  POST /v1/sessions/{id}/survey/questions")
		log.Println("  GET/PUT /v1/settings/customization")
		log.Println("  WS  /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
