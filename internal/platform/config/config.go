package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration so main stays lean. Policy
// thresholds live here rather than in code: the conflict margin in
// particular is a tuning decision, set experimentally per deployment.
type Server struct {
	Addr string

	// PostgresDSN enables the Postgres stores; empty keeps everything
	// in-memory (development and tests).
	PostgresDSN string

	// RedisURL enables the canonical-draw read cache; empty disables it.
	RedisURL string

	// KafkaBrokers enables the audit Kafka sink; empty disables it.
	KafkaBrokers    []string
	KafkaAuditTopic string

	// ConflictMargin is the tie-breaking threshold: a candidate must beat
	// the best contributor's trust x confidence score by more than this to
	// replace a canonical value; scores within the margin mark the field
	// conflicted.
	ConflictMargin float64

	// CertainThreshold and DegradedCap drive verdict certainty labeling.
	CertainThreshold float64
	DegradedCap      float64

	// DrawCacheTTL bounds staleness of cached canonical draws.
	DrawCacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:             getEnv("LEDGER_ADDR", ":8080"),
		PostgresDSN:      os.Getenv("LEDGER_POSTGRES_DSN"),
		RedisURL:         os.Getenv("LEDGER_REDIS_URL"),
		KafkaAuditTopic:  getEnv("LEDGER_KAFKA_AUDIT_TOPIC", "lottoledger.audit"),
		ConflictMargin:   getEnvFloat("LEDGER_CONFLICT_MARGIN", 0.05),
		CertainThreshold: getEnvFloat("LEDGER_CERTAIN_THRESHOLD", 0.99),
		DegradedCap:      getEnvFloat("LEDGER_DEGRADED_CAP", 0.75),
		DrawCacheTTL:     getEnvDuration("LEDGER_DRAW_CACHE_TTL", 5*time.Minute),
	}
	if brokers := os.Getenv("LEDGER_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
