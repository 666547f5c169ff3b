package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"krjobs-scraper/internal/config"
	"krjobs-scraper/internal/runner"
	"krjobs-scraper/internal/storage"
)

type scrapeRequest struct {
	Sites      []string `json:"sites"`
	DeepScrape *bool    `json:"deep_scrape"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()
	cfg := config.Load()

	store, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	if s, ok := store.(*storage.SupabaseStorage); ok {
		defer s.Close()
		if err := s.Migrate(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	// One scrape at a time; a second POST while a run is active gets 409.
	var running sync.Mutex

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "krjobs scraper API is running!",
			"status":  "healthy",
			"sites":   runner.AllSites(),
		})
	})

	r.POST("/scrape", func(c *gin.Context) {
		var req scrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !running.TryLock() {
			c.JSON(http.StatusConflict, gin.H{"error": "a scrape is already running"})
			return
		}
		defer running.Unlock()

		deep := true
		if req.DeepScrape != nil {
			deep = *req.DeepScrape
		}

		summary := runner.New(cfg, store).Run(c.Request.Context(), req.Sites, deep)
		c.JSON(http.StatusOK, summary)
	})

	r.GET("/stats", func(c *gin.Context) {
		stats, err := store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	log.Printf("Server listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
