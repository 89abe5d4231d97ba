package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"lottoledger/internal/audit"
	auditHandler "lottoledger/internal/audit/handler"
	auditkafka "lottoledger/internal/audit/kafka"
	"lottoledger/internal/ingest"
	ingestHandler "lottoledger/internal/ingest/handler"
	"lottoledger/internal/ingest/xlsximport"
	"lottoledger/internal/platform/config"
	"lottoledger/internal/platform/httpserver"
	"lottoledger/internal/platform/logger"
	platformredis "lottoledger/internal/platform/redis"
	"lottoledger/internal/reconcile"
	reconcileHandler "lottoledger/internal/reconcile/handler"
	reconcileMetrics "lottoledger/internal/reconcile/metrics"
	"lottoledger/internal/rules"
	"lottoledger/internal/ticket"
	httptransport "lottoledger/internal/transport/http"
	"lottoledger/internal/verify"
	verifyHandler "lottoledger/internal/verify/handler"
	verifyMetrics "lottoledger/internal/verify/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	registry := rules.MustNewRegistry(rules.Defaults()...)
	healthChecks := map[string]func(context.Context) error{}

	// Draw store: Postgres when configured, in-memory otherwise.
	var drawStore reconcile.Store = reconcile.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, reconcile.Schema); err != nil {
			log.Error("apply draw schema", "error", err)
			os.Exit(1)
		}
		drawStore = reconcile.NewPostgresStore(pool)
		healthChecks["postgres"] = pool.Ping
	}

	// Audit store follows the same split.
	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if _, err := db.ExecContext(ctx, audit.Schema); err != nil {
			log.Error("apply audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = audit.NewPostgresStore(db)
	}

	// Optional Redis read cache in front of the draw store.
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		drawStore = reconcile.NewCachedStore(drawStore, redisClient.Client, cfg.DrawCacheTTL)
		healthChecks["redis"] = redisClient.Health
	}

	// Optional Kafka audit sink.
	var sinks []audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		sinks = append(sinks, producer)
	}
	auditor := audit.NewPublisher(auditStore, log, sinks...)

	reconciler := reconcile.NewService(registry, drawStore, auditor, reconcileMetrics.New(), log, cfg.ConflictMargin)
	normalizer := ingest.NewNormalizer(registry, log)
	importer := xlsximport.NewImporter(normalizer, reconciler, log)
	verifier := verify.NewService(registry, drawStore, auditor, verifyMetrics.New(), log, verify.Config{
		CertainThreshold: cfg.CertainThreshold,
		DegradedCap:      cfg.DegradedCap,
	})

	router := httptransport.NewRouter(httptransport.Handlers{
		Ingest: ingestHandler.New(normalizer, reconciler, importer, log),
		Draws:  reconcileHandler.New(reconciler, log),
		Verify: verifyHandler.New(ticket.NewExtractor(registry), verifier, log),
		Audit:  auditHandler.New(auditor, log),

		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting lottoledger", "addr", cfg.Addr, "games", registry.Games())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
