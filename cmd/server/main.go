package main

import (
	"context" // context package is needed for Redis operations

	"campus_wallet/internal/account"      // Account operations
	"campus_wallet/internal/api"          // Custom package for API handlers
	"campus_wallet/internal/config"       // Custom package for configuration
	"campus_wallet/internal/db"           // Database connection
	"campus_wallet/internal/gateway"      // Data gateway
	"campus_wallet/internal/inventory"    // Inventory operations
	"campus_wallet/internal/notification" // Notification feed
	"campus_wallet/internal/realtime"     // Websocket hub
	"campus_wallet/internal/wallet"       // Wallet services

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

	// Connect to the database
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Data gateway and public avatar bucket
	store := gateway.New(conn, cfg.GatewayTimeout)
	avatars, err := gateway.NewAvatarStore(cfg.AvatarDir, cfg.PublicBaseURL)
	if err != nil {
		logrus.Fatalf("failed to prepare avatar directory: %v", err)
	}

	// Services
	recorder := wallet.NewRecorder(store, cfg.Currency)
	deps := api.Deps{
		Store:   store,
		Avatars: avatars,
		Redis:   redisClient,
		Accounts: account.NewService(store, avatars, redisClient, account.Options{
			JWTSecret: cfg.JWTSecret,     // Token signing key
			JWTTTL:    cfg.JWTTTL,        // Token lifetime
			ResetTTL:  cfg.ResetTokenTTL, // Recovery token lifetime
			Currency:  cfg.Currency,      // Wallet currency
		}),
		Recorder:  recorder,
		History:   wallet.NewAggregator(store, wallet.NewCachedNames(store, redisClient, cfg.CacheTTL)),
		Deriver:   notification.NewDeriver(store, cfg.Location()),
		Inventory: inventory.NewService(store),
		Hub:       realtime.NewHub(),
		JWTSecret: cfg.JWTSecret,
		CacheTTL:  cfg.CacheTTL,
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.Routes(r, deps)

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
