package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/voxprep/backend/config"
	"github.com/voxprep/backend/internal/api/handlers"
	"github.com/voxprep/backend/internal/api/middleware"
	"github.com/voxprep/backend/internal/api/routes"
	"github.com/voxprep/backend/internal/cache"
	"github.com/voxprep/backend/internal/logger"
	"github.com/voxprep/backend/internal/notify"
	"github.com/voxprep/backend/internal/providers/llm"
	"github.com/voxprep/backend/internal/providers/voice"
	mongorepo "github.com/voxprep/backend/internal/repositories/mongo"
	"github.com/voxprep/backend/internal/services"
	"github.com/voxprep/backend/internal/session"
)

func main() {
	_ = godotenv.Load()

	logg := logger.New()
	ctx := context.Background()

	// Init MongoDB
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	logg.Info("MongoDB connected")

	// Listing indexes are provisioned asynchronously; the query layer
	// falls back while they are missing.
	if err := config.EnsureMongoIndexes(); err != nil {
		logg.WithError(err).Warn("mongo index provisioning failed")
	}

	// Init Redis
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	logg.Info("Redis connected")

	// LLM provider
	llmProvider, err := llm.NewFromEnv(ctx)
	if err != nil {
		log.Fatalf("LLM init error: %v", err)
	}
	defer llmProvider.Close()

	// Voice gateway client; an unconfigured gateway is surfaced per-session
	// by the controller's pre-flight check, not at boot.
	voiceProvider := voice.NewWSClient(voice.ConfigFromEnv(), logg)

	db := config.MongoClient.Database(config.MongoDatabaseName())
	interviewRepo := mongorepo.NewInterviewRepo(db)
	feedbackRepo := mongorepo.NewFeedbackRepo(db)

	redisCache := cache.NewRedisCache(config.RedisClient)
	publisher := notify.NewRedisPublisher(config.RedisClient, logg)

	feedbackSvc := services.NewFeedbackService(feedbackRepo, llmProvider, logg)
	interviewSvc := services.NewInterviewService(interviewRepo, llmProvider, redisCache, logg)

	sessions := session.NewManager(session.Config{
		Provider:  voiceProvider,
		Feedback:  feedbackSvc,
		Publisher: publisher,
		Logger:    logg,
	})

	// Start Gin server
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logg))

	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(interviewSvc, feedbackSvc),
		Call:      handlers.NewCallHandler(sessions),
		WS:        handlers.NewWSHandler(sessions, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
