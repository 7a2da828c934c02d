package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/core/command"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/infra/workerpool"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "Minimal RESP key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv files exported before RESPKV_ variables are read",
				Value: cli.NewStringSlice(".env"),
			},
			&cli.StringFlag{Name: "addr", Usage: "RESP listen address"},
			&cli.IntFlag{Name: "workers", Usage: "Worker pool size"},
			&cli.IntFlag{Name: "shards", Usage: "Store lock shards (power of two)"},
			&cli.IntFlag{Name: "rate-limit", Usage: "Requests per second per connection, 0 disables"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "HTTP address for /metrics, empty disables"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error"},
			&cli.StringFlag{Name: "log-format", Usage: "Log format: json, text"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	loader := confloader.NewLoader(
		confloader.WithConfigFile(configFile),
		confloader.WithEnvFiles(c.StringSlice("env-file")...),
		confloader.WithOverrides(overridesFromFlags(c)),
	)

	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	log.Info("starting respkv-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", configFile)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	registry := metric.NewRegistry()
	store := memory.New(memory.WithShards(cfg.Storage.Shards))

	pool, err := workerpool.New(cfg.Workers.Count, workerpool.WithLogger(log.Named("workerpool").Slog()))
	if err != nil {
		return fmt.Errorf("init worker pool: %w", err)
	}
	registry.MustRegister(metric.NewCollector(store.Len, pool.Pending))

	executor := command.NewExecutor(store,
		command.WithRecorder(registry),
		command.WithLogger(log.Named("executor").Slog()))

	redisServer := redisserver.New(redisConfig(cfg), executor,
		redisserver.WithLogger(log.Named("reactor").Slog()),
		redisserver.WithMetrics(registry),
		redisserver.WithDispatcher(pool))

	var ready atomic.Bool
	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(slogLogger))

	// Hooks run in reverse: the RESP server stops before its pool drains.
	shutdownHandler.OnShutdown("worker pool", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	if err := redisServer.Start(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("start redis server: %w", err)
	}
	ready.Store(true)
	shutdownHandler.OnShutdown("redis server", func(ctx context.Context) error {
		ready.Store(false)
		return redisServer.Shutdown(ctx)
	})

	if cfg.Server.Metrics.Addr != "" {
		httpLog := log.Named("http").Slog()
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: registry.Handler(),
			Ready:   ready.Load,
			Logger:  httpLog,
		})
		httpServer := httpserver.New(cfg.Server.Metrics.Addr, router, httpLog)
		if err := httpServer.Start(); err != nil {
			_ = shutdownHandler.Shutdown()
			return fmt.Errorf("start http server: %w", err)
		}
		shutdownHandler.OnShutdown("http server", httpServer.Shutdown)
	}

	reload := func() { reloadConfig(loader, slogLogger) }
	shutdown.NotifyReload(ctx, reload)
	if configFile != "" {
		stopWatch, err := watchConfig(configFile, reload, log.Named("config").Slog())
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return stopWatch()
			})
		}
	}

	// An event loop that exits on its own also ends the process.
	go func() {
		select {
		case <-redisServer.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// initLogger builds the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	return &redisserver.Config{
		Address:         cfg.Server.Redis.Addr,
		ReadChunkSize:   cfg.Server.Redis.ReadChunkSize,
		MaxEvents:       cfg.Server.Redis.MaxEvents,
		Workers:         cfg.Workers.Count,
		RateLimit:       cfg.Server.Redis.RateLimit,
		MaxRequestBytes: cfg.Server.Redis.MaxRequestBytes,
	}
}
