package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/controllers"
	"github.com/signworks/orderflow-api/jobs"
	"github.com/signworks/orderflow-api/models"
	"github.com/signworks/orderflow-api/realtime"
	"github.com/signworks/orderflow-api/services"
	"github.com/signworks/orderflow-api/utils"
)

func main() {
	log.Println("Starting Orderflow API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	if err := controllers.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	utils.UploadDir = cfg.UploadDir
	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		services.InitStorage(s3Service)
		log.Printf("Storing order files in bucket %s", cfg.AWSS3Bucket)
	} else {
		services.InitStorage(services.NewLocalStorage(cfg.UploadDir, cfg.JWTSecret))
		log.Printf("Storing order files under %s", cfg.UploadDir)
	}

	if cfg.RedisAddr != "" {
		cache := services.NewRedisIdempotencyCache(cfg.RedisAddr)
		if err := cache.Ping(ctx); err != nil {
			log.Printf("Redis unavailable at %s, request ids are checked in the database only: %v", cfg.RedisAddr, err)
			_ = cache.Close()
		} else {
			services.InitIdempotencyCache(cache)
			defer cache.Close()
		}
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	sinks := []services.EventSink{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := services.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Printf("Publishing order events to Kafka topic %s", cfg.KafkaTopic)
	}
	relay := services.NewOutboxRelay(db, sinks...).WithMaxAttempts(cfg.OutboxMaxAttempts)

	jobManager := jobs.NewJobManager(relay, cfg.OutboxInterval, services.NewOrderService(db), relay)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	router := setupRouter(cfg, hub)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	jobManager.StopAll()
	log.Println("Server stopped")
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orderflow API is running",
	})
}

// databaseStatus checks database connectivity and returns pool statistics
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database not initialized",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	stats := sqlDB.Stats()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"dialect": db.Dialector.Name(),
		"pool": gin.H{
			"open":  stats.OpenConnections,
			"inUse": stats.InUse,
			"idle":  stats.Idle,
		},
	})
}
