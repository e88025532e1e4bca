package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"vget/internal/config"
	"vget/internal/handlers"
	"vget/internal/retention"
	"vget/internal/store"
	"vget/internal/version"
	"vget/internal/worker"
	"vget/internal/youtube"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg := config.Load()

	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		log.Fatalf("Failed to create download folder %s: %v", cfg.DownloadDir, err)
	}

	jobStore := store.NewJobStore()
	fetcher := youtube.NewClient(cfg.DownloadDir)
	runner := worker.NewRunner(jobStore, fetcher)

	manager := retention.NewManager(cfg.DownloadDir, cfg.MaxFilesToKeep, cfg.CleanupInterval)
	manager.Start()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Wire contract: every error body is {"error": ...}. Unexpected
	// faults stay generic; nothing internal reaches the client.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if code == http.StatusNotFound {
				message = "Endpoint not found"
			} else if s, ok := he.Message.(string); ok {
				message = s
			}
		}
		if jerr := c.JSON(code, map[string]string{"error": message}); jerr != nil {
			log.Printf("Error writing error response: %v", jerr)
		}
	}

	jobHandler := handlers.NewJobHandler(jobStore, runner, fetcher)
	maintenanceHandler := handlers.NewMaintenanceHandler(jobStore, manager)

	e.POST("/jobs/info", jobHandler.Info)
	e.POST("/jobs", jobHandler.Start)
	e.GET("/jobs", jobHandler.List)
	e.GET("/jobs/:id", jobHandler.Get)
	e.GET("/jobs/:id/artifact", jobHandler.Artifact)
	e.POST("/maintenance/cleanup", maintenanceHandler.Cleanup)
	e.GET("/stats", maintenanceHandler.Stats)
	e.GET("/health", maintenanceHandler.Health)

	log.Printf("Starting vget v%s on port %s", version.Version, cfg.Port)
	log.Printf("Download folder: %s", cfg.DownloadDir)
	log.Printf("Max files to keep: %d", cfg.MaxFilesToKeep)

	go func() {
		if err := e.Start(fmt.Sprintf(":%s", cfg.Port)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Block until interrupted, then shut down: HTTP first so no new
	// jobs arrive, then the retention loop. Running job goroutines are
	// not waited on; they cannot be cancelled once started.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	manager.Stop()
}
