package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"uet-duck-server/internal/ai"
	"uet-duck-server/internal/chat"
	"uet-duck-server/internal/config"
	"uet-duck-server/internal/corpus"
	"uet-duck-server/internal/hearts"
	"uet-duck-server/internal/logger"
	"uet-duck-server/middleware"
	"uet-duck-server/routes"
	"uet-duck-server/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Connect to Redis (OAuth state, rate limiting)
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Load the corpus once. Missing or broken corpus leaves the service in
	// no-context mode rather than refusing to start.
	index := corpus.Load(cfg.CorpusPath)

	// Gemini collaborators
	ctx := context.Background()
	embedder, err := ai.NewGeminiEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create Gemini embedder:", err)
	}
	defer embedder.Close()

	generator, err := ai.NewGeminiGenerator(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create Gemini generator:", err)
	}
	defer generator.Close()

	// Hearts ledger and the recharge job
	ledger := hearts.NewMongoLedger(mongoClient.Database(cfg.DBName))

	scheduler := hearts.NewRechargeScheduler(
		ledger,
		cfg.RechargeAmount,
		cfg.MaxHearts,
		time.Duration(cfg.RechargeIntervalMinutes)*time.Minute,
	)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start recharge scheduler:", err)
	}
	defer scheduler.Stop()

	orchestrator := chat.NewOrchestrator(ledger, embedder, generator, index)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"timestamp":    time.Now(),
			"corpus_size":  index.Size(),
			"corpus_ready": !index.Degraded(),
		})
	})

	// Setup routes
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	routes.SetupAuthRoutes(router, cfg, mongoClient, rdb, authMiddleware)
	routes.SetupChatRoutes(router, orchestrator, authMiddleware)

	// Frontend assets
	router.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := utils.WithLongTimeout(context.Background())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
