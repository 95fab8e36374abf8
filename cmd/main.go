// jobmate-trust-service
//
// Trust and risk decisioning for the platform:
//   - riskScore(companyId)   — explainable 0-100 company trust score,
//     recomputed from history on every read
//   - contentCheck(content)  — gating verdict for submitted job content
//     against the mutable risk rule set
//   - rule administration    — CRUD on risk rules (admin role)
//
// A cron monitor periodically re-scores recently active companies and
// publishes EVENT_COMPANY_HIGH_RISK to Redis. Mark-risk content checks
// publish EVENT_CONTENT_MARKED for the priority review queue.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmate/trust-service/internal/config"
	"jobmate/trust-service/internal/db"
	"jobmate/trust-service/internal/monitor"
	"jobmate/trust-service/internal/rulecheck"
	"jobmate/trust-service/internal/trustscore"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[trust-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[trust-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[trust-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[trust-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[trust-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[trust-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[trust-service] Redis connected ✓")

	// ── Services ─────────────────────────────────────────────────────────────
	scoreSvc := trustscore.NewService(pool)
	checkSvc := rulecheck.NewService(pool, rdb, cfg.DuplicateCorpusLimit)

	// ── Risk monitor ─────────────────────────────────────────────────────────
	mon := monitor.New(pool, rdb, scoreSvc, cfg.SweepIntervalHours)
	if err := mon.Start(ctx); err != nil {
		log.Fatalf("[trust-service] Monitor: %v", err)
	}
	defer mon.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	trustscore.NewHandler(scoreSvc).RegisterRoutes(mux)
	rulecheck.NewHandler(checkSvc).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[trust-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[trust-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[trust-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[trust-service] Shutdown error: %v", err)
	}
	log.Println("[trust-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "trust-service",
		"version": version,
	})
}
