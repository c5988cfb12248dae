/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the commission projection server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present), parse command-line flags
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router, start projection scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port         HTTP server port (default: 8080)
  -db           SQLite database path (default: commissions.db)
                Use ":memory:" for in-memory database
  -regen-every  Projection rebuild interval (default: 24h, 0 disables)

ENVIRONMENT:
  PORT, DATABASE_PATH override flag defaults. A .env file in the working
  directory is loaded first when present.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/commissions.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/commission-engine/api"
	"github.com/warp/commission-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and real environment win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "commissions.db"), "SQLite database path")
	regenEvery := flag.Duration("regen-every", 24*time.Hour, "projection rebuild interval (0 disables)")
	flag.Parse()

	// Initialize store
	st, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	// Initialize handler and router
	handler := api.NewHandler(st)
	router := api.NewRouter(handler)

	// Background projection rebuilds
	scheduler := api.NewRegenerationScheduler(st, handler)
	if *regenEvery > 0 {
		scheduler.Interval = *regenEvery
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
