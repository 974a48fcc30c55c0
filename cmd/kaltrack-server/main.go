package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkleber/kaltrack/internal/actions"
	"github.com/mkleber/kaltrack/internal/api"
	"github.com/mkleber/kaltrack/internal/chat"
	"github.com/mkleber/kaltrack/internal/chatparse"
	"github.com/mkleber/kaltrack/internal/config"
	"github.com/mkleber/kaltrack/internal/foodkb"
	"github.com/mkleber/kaltrack/internal/ledger"
	"github.com/mkleber/kaltrack/internal/llm"
	"github.com/mkleber/kaltrack/internal/openfood"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting kaltrack-server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Open the ledger database
	store, err := ledger.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// Remote product lookup, disabled via config if unwanted
	var remote foodkb.RemoteSearcher
	if cfg.RemoteLookup {
		remote = openfood.NewClient(cfg.OpenFoodURL, "kaltrack-server/1.0")
	}

	resolver := foodkb.NewResolver(store, remote)

	// Model client
	model := llm.NewClient(cfg.GeminiURL, cfg.GeminiKey, cfg.GeminiModel)
	if cfg.GeminiKey == "" {
		log.Println("WARNING: no model API key configured, chat falls back to rule-based parsing")
	} else {
		log.Printf("Model configured: %s", cfg.GeminiModel)
	}

	// Conversational pipeline; reference dates use the configured zone
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, falling back to UTC", cfg.Timezone)
		loc = time.UTC
	}
	manager := actions.NewManager(store)
	chatSvc := chat.NewService(model, chatparse.New(resolver), manager, loc)

	// Sweeper drops settled actions after their grace period
	sweeper, err := actions.NewSweeper(manager)
	if err != nil {
		log.Fatalf("Failed to create sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}

	// Create router
	router := api.NewRouter(cfg, chatSvc, manager, store, resolver)

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down gracefully...")

	// Give ongoing requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopping sweeper...")
	if err := sweeper.Stop(); err != nil {
		log.Printf("Sweeper shutdown error: %v", err)
	}

	log.Println("Closing database...")
	if err := store.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}
