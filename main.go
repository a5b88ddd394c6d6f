package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "spacecombat.db", "SQLite database path (empty disables accounts)")
	configPath := flag.String("config", "", "Battle config JSON (default: built-in settings)")
	clientDir := flag.String("client", "", "Static client directory to serve (optional)")
	publicURL := flag.String("public-url", "", "Base URL used in spectate QR codes")
	seed := flag.Int64("seed", 0, "Seed for battles created without one (0 = clock)")
	status := flag.Float64("status-interval", 0, "Seconds between per-battle status log lines (0 disables)")
	schema := flag.Bool("schema", false, "Print the config JSON schema and exit")
	flag.Parse()

	if *schema {
		out, err := json.MarshalIndent(ConfigSchema(), "", "  ")
		if err != nil {
			log.Fatalf("schema: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var db *DB
	if *dbPath != "" {
		db, err = OpenDB(*dbPath)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
	}

	analytics := NewAnalytics(db)

	hub := NewHub(cfg, db, analytics)
	hub.sessions.DefaultSeed = *seed
	hub.sessions.StatusInterval = *status
	go hub.Run()

	mux := SetupRoutes(hub, *clientDir, *publicURL)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("Server starting on %s", *addr)
		if *clientDir != "" {
			log.Printf("Serving client files from %s", *clientDir)
		}
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	server.Close()
	hub.sessions.StopAll()
	analytics.Stop()
	if n := analytics.Dropped(); n > 0 {
		log.Printf("analytics dropped %d events", n)
	}
}
