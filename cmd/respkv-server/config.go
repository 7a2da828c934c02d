package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":         "server.redis.addr",
	"rate-limit":   "server.redis.rate_limit",
	"metrics-addr": "server.metrics.addr",
	"workers":      "workers.count",
	"shards":       "storage.shards",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// overridesFromFlags returns the explicitly set flags as config keys.
func overridesFromFlags(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			out[key] = c.Value(flag)
		}
	}
	return out
}

// loadConfig loads and verifies configuration.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// reloadConfig re-reads every source and applies the settings that can
// change at runtime. Only the log level is live; other changes need a
// restart.
func reloadConfig(loader *confloader.Loader, log *slog.Logger) {
	cfg := config.Default()
	if err := loader.Reload(cfg); err != nil {
		log.Error("config reload failed", "error", err)
		return
	}
	if err := config.Verify(cfg); err != nil {
		log.Error("config reload rejected", "error", err)
		return
	}

	old := logger.GetLevel()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Error("config reload rejected", "error", err)
		return
	}
	if now := logger.GetLevel(); now != old {
		log.Info("log level changed", "from", old, "to", now)
	}
}

// watchConfig calls reload whenever path is written.
func watchConfig(path string, reload func(), log *slog.Logger) (stop func() error, err error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) { reload() })
	w.StartAsync()
	return w.Stop, nil
}
