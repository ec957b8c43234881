/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leaderboard server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load TOML configuration (a commented default is written when absent)
  3. Initialize the store (plain-text directory or SQLite)
  4. Build the application context (auth gate, entry log, trackers)
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -config  TOML configuration path (default: leaderboard.toml)
  -data    Plain-text data directory (default: ./data)
  -db      SQLite database path; when set, overrides -data
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run against the plain-text data directory
  ./server -data=./data

  # Run against SQLite
  ./server -db=./data/leaderboard.db

  # Run on a different port
  ./server -port=3000

ENVIRONMENT:
  LEADERBOARD_ADMIN_HASH overrides the configured admin hash.

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration schema and defaults
  - store/file, store/sqlite: Persistence implementations
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sarsor/leaderboard/api"
	"github.com/sarsor/leaderboard/app"
	"github.com/sarsor/leaderboard/config"
	"github.com/sarsor/leaderboard/engine"
	"github.com/sarsor/leaderboard/store/file"
	"github.com/sarsor/leaderboard/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	configPath := flag.String("config", "leaderboard.toml", "TOML configuration path")
	dataDir := flag.String("data", "./data", "plain-text data directory")
	dbPath := flag.String("db", "", "SQLite database path (overrides -data)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize store
	var store engine.Store
	var closer io.Closer
	if *dbPath != "" {
		s, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = s
		closer = s
		log.Printf("Using SQLite store at %s", *dbPath)
	} else {
		s, err := file.New(*dataDir, cfg.CategoryNames())
		if err != nil {
			log.Fatalf("Failed to initialize data directory: %v", err)
		}
		store = s
		log.Printf("Using plain-text store at %s", *dataDir)
	}
	if closer != nil {
		defer closer.Close()
	}

	// Build application context
	application, err := app.New(cfg, store)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	// Create router
	handler := api.NewHandler(application)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🏆 Leaderboard server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
