package main

import (
	"context"                    // context package is needed for Redis operations
	"landestate/internal/api"    // Custom package for API handlers
	"landestate/internal/config" // Custom package for configuration
	"landestate/internal/db"     // Database connection and migration
	"landestate/internal/queue"  // Notification events
	"time"                       // Startup timeouts

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	database, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite has no separate migration step in development
		if err := db.Migrate(database); err != nil {
			logrus.Fatalf("failed to migrate DB: %v", err)
		}
	}

	// Setup Redis client; caching is skipped when no address is configured
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err = redisClient.Ping(ctx).Result() // Test Redis connection
		cancel()
		if err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set - caching disabled")
	}

	// Setup event publishing; events are only logged without a broker
	var publisher queue.Publisher = queue.LogPublisher{}
	if cfg.KafkaBroker != "" {
		producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
		defer producer.Close()
		publisher = producer
	} else {
		logrus.Warn("KAFKA_BROKER not set - events will only be logged")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{DB: database, Redis: redisClient, Publisher: publisher, Config: cfg})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
