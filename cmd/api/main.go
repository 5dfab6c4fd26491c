package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/cartvault/api/routes"
	"github.com/angelmondragon/cartvault/internal/cartcodec"
	"github.com/angelmondragon/cartvault/internal/oracle"
	"github.com/angelmondragon/cartvault/internal/session"
	"github.com/angelmondragon/cartvault/internal/store"
	"github.com/angelmondragon/cartvault/pkg/config"
	"github.com/angelmondragon/cartvault/pkg/logger"
	"github.com/angelmondragon/cartvault/pkg/metrics"
	"github.com/angelmondragon/cartvault/pkg/redis"
)

const sweepInterval = 5 * time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	codec, err := cartcodec.New(cfg.Cart.EnvelopeSecret, cfg.Cart.EnvelopeSalt, cfg.Cart.KDFIterations)
	if err != nil {
		logg.Error(context.Background(), "failed to build envelope codec", err)
		os.Exit(1)
	}

	prices, err := oracle.NewClient(cfg.Oracle, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build price oracle client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reconcileMetrics := metrics.NewReconcileMetrics(registry)

	sessions, err := session.NewManager(session.ManagerParams{
		Codec: codec,
		Stores: func(sessionID string) (store.Store, error) {
			return store.NewRedisStore(redisClient, sessionID, cfg.Cart.EnvelopeTTL)
		},
		Prices:  prices,
		Logger:  logg,
		Metrics: reconcileMetrics,
		IdleTTL: cfg.Cart.SessionIdleTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logg.Error(context.Background(), "error closing session manager", err)
		}
	}()

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	sessions.StartSweeper(sweepCtx, sweepInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting cart api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, sessions,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "cart api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
