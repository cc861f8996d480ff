package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-review/internal/apply"
	"github.com/jonathan/resume-review/internal/db"
	"github.com/jonathan/resume-review/internal/review"
	"github.com/jonathan/resume-review/internal/server"
	"github.com/jonathan/resume-review/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review REST API server",
	Long: "Start an HTTP server that exposes review sessions. Sessions live in Redis when REDIS_URL is set " +
		"(in memory otherwise); applied reviews are stored in PostgreSQL when DATABASE_URL is set.",
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config or PORT, else 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := settings()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	ctx := context.Background()

	var store review.Store
	if cfg.RedisURL != "" {
		redisStore, err := review.NewRedisStore(cfg.RedisURL, cfg.SessionTTL())
		if err != nil {
			return err
		}
		defer func() { _ = redisStore.Close() }()
		store = redisStore
		log.Printf("[server] review sessions stored in redis (ttl %v)", cfg.SessionTTL())
	} else {
		store = review.NewMemoryStore()
		log.Printf("[server] REDIS_URL not set; review sessions kept in memory")
	}

	var recorder apply.Recorder
	var history server.History
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		recorder, history = database, database
	} else {
		log.Printf("[server] DATABASE_URL not set; applied reviews are not stored")
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		CORSOrigin: cfg.CORSOrigin,
		Store:      store,
		Applier:    apply.NewApplier(recorder),
		History:    history,
		Diff:       cfg.MatchOptions(),
		RateLimit:  ratelimit.LoadConfig(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
