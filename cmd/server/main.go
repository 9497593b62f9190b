package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ByeongIn-K/goat-server/internal/api"
	"github.com/ByeongIn-K/goat-server/internal/app"
	"github.com/ByeongIn-K/goat-server/internal/config"
	"github.com/ByeongIn-K/goat-server/internal/events"
	"github.com/ByeongIn-K/goat-server/internal/metrics"
	"github.com/ByeongIn-K/goat-server/internal/rollover"
	"github.com/ByeongIn-K/goat-server/internal/store"
)

// pinger is what the readiness probe needs from a store.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("GOAT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		st        store.Store
		ping      pinger
		backupSvc *store.BackupService
		closeFns  []func() error
	)
	switch cfg.Store.Mode {
	case config.StoreRemote:
		client := store.NewClient(cfg.Store.BaseURL, cfg.Store.APIKey)
		if rdb != nil {
			client.UseRedisCache(rdb, cfg.CacheTTL())
		}
		st = client
		ping = pingerFunc(client.HealthCheck)
	case config.StoreSQLite:
		db, err := store.NewSQLite(cfg.Store.SQLitePath, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("open sqlite store")
		}
		closeFns = append(closeFns, db.Close)
		st = db
		ping = db
		if cfg.Backup.Enabled {
			backupSvc = store.NewBackupService(cfg.Store.SQLitePath, cfg.Backup, &logger)
		}
	default:
		st = store.NewMemory()
	}
	defer func() {
		for _, fn := range closeFns {
			_ = fn()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if backupSvc != nil {
		go backupSvc.Start(ctx)
	}

	bus := events.NewBus()
	application := app.New(st, bus, logger)
	application.Load(ctx)
	logger.Info().
		Int("restaurants", len(application.Restaurants())).
		Msg("initial state loaded")

	scheduler, err := rollover.NewScheduler(bus, cfg.Timezone, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create rollover scheduler")
	}
	go scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, ping, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9091
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewServer(application, api.Config{
		Addr:           cfg.API.Addr,
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
	}, logger)

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("api shutdown error")
		}
	}()

	logger.Info().Msg("GOAT server started")
	if err := server.Start(); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
	logger.Info().Msg("GOAT server stopped")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func startHealthServer(ctx context.Context, port int, ping pinger, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if ping != nil {
			if err := ping.Ping(ctxPing); err != nil {
				http.Error(w, "store not ready", http.StatusServiceUnavailable)
				return
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
