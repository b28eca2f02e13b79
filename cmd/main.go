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

	"questforge/server/internal/config"
	"questforge/server/internal/engine"
	"questforge/server/internal/interfaces"
	"questforge/server/internal/storage"
	"questforge/server/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage connections
	pgStore, err := storage.NewPostgresStore(cfg.Database.Postgres)
	if err != nil {
		log.Printf("Warning: Failed to connect to Postgres: %v", err)
		pgStore = nil
	} else {
		defer pgStore.Close()
		log.Println("Postgres connected successfully")
	}

	redisStore, err := storage.NewRedisStore(cfg.Database.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisStore = nil
	} else {
		defer redisStore.Close()
		log.Println("Redis connected successfully")
	}

	// Initialize the generator
	if cfg.AI.LLM.APIKey == "" {
		log.Println("Warning: No LLM API key provided. Generation features will be unavailable.")
	}

	var generator interfaces.Generator
	if cfg.AI.LLM.APIKey != "" {
		llm := engine.NewLLMClient(cfg.AI.LLM)
		generator = engine.NewAdventureGenerator(llm)
		log.Println("Adventure generator initialized successfully")
	}

	// The wizard takes the stores as interfaces so a missing backend
	// degrades that feature instead of the whole server.
	var contentStore interfaces.ContentStore
	var adventureStore interfaces.AdventureStore
	if pgStore != nil {
		contentStore = pgStore
		adventureStore = pgStore
	}

	wizard := web.NewWizardService(cfg, generator, contentStore, adventureStore, redisStore)

	hub := web.NewSessionHub()
	go hub.Run()

	r := web.NewRouter(cfg, hub, wizard, pgStore)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
