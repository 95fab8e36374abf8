// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the trust service.
type Config struct {
	Port                 string
	DatabaseURL          string
	RedisURL             string
	SweepIntervalHours   int // how often the risk monitor cron fires
	DuplicateCorpusLimit int // max postings fetched for duplicate comparison
}

// Load reads environment variables and returns a validated Config.
// A .env file in the working directory is applied first when present
// (local development convenience; never required).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 6
	if s := os.Getenv("RISK_SWEEP_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RISK_SWEEP_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	corpusLimit := 100
	if s := os.Getenv("DUPLICATE_CORPUS_LIMIT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("DUPLICATE_CORPUS_LIMIT must be a positive integer, got %q", s)
		}
		corpusLimit = v
	}

	port := os.Getenv("TRUST_PORT")
	if port == "" {
		port = "8083"
	}

	return &Config{
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		SweepIntervalHours:   interval,
		DuplicateCorpusLimit: corpusLimit,
	}, nil
}
