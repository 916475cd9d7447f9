package main

import (
	"fmt"
	"log"
	"net/http"

	"org-registry-backend/pkg/api"
	"org-registry-backend/pkg/config"
	"org-registry-backend/pkg/database"
	"org-registry-backend/pkg/ratelimit"
)

func main() {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := database.NewStore(database.Config{
		PostgresDSN: cfg.PostgresDSN,
		Debug:       cfg.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var limiter *ratelimit.Limiter
	if cfg.RedisURL != "" {
		limiter, err = ratelimit.NewLimiter(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize rate limiter: %v", err)
		}
		defer limiter.Close()
	}

	router := api.NewRouter(cfg, db, limiter)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	if cfg.IsDevelopment() {
		log.Printf("Server starting on http://localhost%s", serverAddr)
	}

	if err := http.ListenAndServe(serverAddr, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
