package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/loganomaly/rcaservice/internal/config"
	"github.com/loganomaly/rcaservice/internal/db"
	"github.com/loganomaly/rcaservice/internal/generator"
	"github.com/loganomaly/rcaservice/internal/logger"
	"github.com/loganomaly/rcaservice/internal/middleware"
	"github.com/loganomaly/rcaservice/internal/routes"
	"github.com/loganomaly/rcaservice/internal/services"

	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set CORS headers for all requests
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight request
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func main() {
	// Initialize logger first
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Connect to database
	if err := db.Connect(cfg.DatabaseURI); err != nil {
		logger.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Load the generative model once at startup. The model and tokenizer are
	// process-wide singletons, read-only after this point.
	var gen services.ExplanationGenerator
	var modelGen *generator.Generator
	if cfg.Generation.Enabled {
		modelGen, err = generator.New(
			cfg.Model.ModelPath,
			cfg.Model.VocabPath,
			cfg.Model.MergesPath,
			cfg.Model.LibPath,
		)
		if err != nil {
			logger.Fatal("Failed to load generative model", map[string]interface{}{
				"error":      err.Error(),
				"model_path": cfg.Model.ModelPath,
			})
		}
		defer modelGen.Close()
		gen = modelGen
		logger.Info("Generative model loaded", map[string]interface{}{
			"model_path": cfg.Model.ModelPath,
		})
	} else {
		logger.Warn("Explanation generation disabled, serving raw records", nil)
	}

	// Setup graceful shutdown
	stopChan := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		logger.Warn("Received shutdown signal", nil)
		close(stopChan)
	}()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	// Use our custom logging middleware instead of gin.Default()
	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(CORSMiddleware(cfg.CORSOrigin))
	r.Use(gin.Recovery())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Check database connectivity
		var dbStatus string
		var dbError error

		if db.DB != nil {
			sqlDB, err := db.DB.DB()
			if err != nil {
				dbStatus = "error"
				dbError = err
			} else {
				err = sqlDB.Ping()
				if err != nil {
					dbStatus = "error"
					dbError = err
				} else {
					dbStatus = "ok"
				}
			}
		} else {
			dbStatus = "error"
			dbError = fmt.Errorf("database connection not initialized")
		}

		var dbErrorMsg interface{}
		if dbError != nil {
			dbErrorMsg = dbError.Error()
		}

		generatorStatus := "disabled"
		if cfg.Generation.Enabled {
			generatorStatus = "error"
			if modelGen.Ready() {
				generatorStatus = "ok"
			}
		}

		// Determine overall health
		overallStatus := "ok"
		statusCode := 200

		if dbStatus != "ok" {
			overallStatus = "error"
			statusCode = 503
		}

		response := gin.H{
			"status":    overallStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
			"services": gin.H{
				"database": gin.H{
					"status": dbStatus,
					"error":  dbErrorMsg,
				},
				"generator": gin.H{
					"status": generatorStatus,
				},
			},
		}

		c.JSON(statusCode, response)
	})

	// Setup routes
	routes.SetupRoutes(r, db.DB, gen, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	logger.Info("Starting RCA query service", map[string]interface{}{
		"port":     cfg.Port,
		"gin_mode": gin.Mode(),
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	<-stopChan
	logger.Info("Shutting down server gracefully...", nil)

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
