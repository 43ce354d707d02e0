package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ollan-health/checkout-api/internal/app"
	"github.com/ollan-health/checkout-api/internal/config"
	dbgen "github.com/ollan-health/checkout-api/internal/db/gen"
	"github.com/ollan-health/checkout-api/internal/lock"
	"github.com/ollan-health/checkout-api/internal/obs"
	"github.com/ollan-health/checkout-api/internal/rules"
	"github.com/ollan-health/checkout-api/internal/tasks"
)

// The worker keeps the cached pricing rules fresh so admin edits reach
// quoting without waiting for the cache TTL to lapse.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Fatal().Msg("DATABASE_URL is required for the rules refresh worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, queries := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	rulesSvc := &rules.Service{
		Q:        queries,
		Cache:    &rules.Cache{Client: redisClient, TTL: cfg.RulesCacheTTL},
		Defaults: cfg.Rules(),
		Logger:   &logger,
	}
	refresher := tasks.RulesRefresher{
		Svc:     rulesSvc,
		Locker:  lock.Locker{R: redisClient},
		LockTTL: 30 * time.Second,
		Logger:  &logger,
	}

	taskOpt, err := app.AsynqRedisOpt(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("task queue options")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRulesRefresh, refresher.Handle)

	server := app.NewTaskServer(taskOpt, envInt("WORKER_CONCURRENCY", 5))
	scheduler := app.NewTaskScheduler(taskOpt)
	refreshSpec := envOrDefault("RULES_REFRESH_CRON", "@every 2m")
	if _, err := scheduler.Register(refreshSpec, tasks.NewRulesRefreshTask()); err != nil {
		logger.Fatal().Err(err).Msg("register rules refresh schedule")
	}

	errCh := make(chan error, 2)
	go func() { errCh <- server.Run(mux) }()
	go func() { errCh <- scheduler.Run() }()

	logger.Info().Str("schedule", refreshSpec).Msg("worker starting")
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("worker stopped with error")
		}
	}

	scheduler.Shutdown()
	server.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, *dbgen.Queries) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "checkout-worker"

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(initCtx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(initCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool, dbgen.New(pool)
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}
