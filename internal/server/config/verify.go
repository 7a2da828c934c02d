package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/pkg/cmap"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if cfg.Workers.Count < 1 {
		return fmt.Errorf("workers.count must be at least 1, got %d", cfg.Workers.Count)
	}
	if !cmap.ValidShardCount(cfg.Storage.Shards) {
		return fmt.Errorf("storage.shards must be a power of two, got %d", cfg.Storage.Shards)
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		return err
	}
	if cfg.Redis.ReadChunkSize < 1 {
		return fmt.Errorf("server.redis.read_chunk_size must be at least 1, got %d", cfg.Redis.ReadChunkSize)
	}
	if cfg.Redis.MaxEvents < 1 {
		return fmt.Errorf("server.redis.max_events must be at least 1, got %d", cfg.Redis.MaxEvents)
	}
	if cfg.Redis.RateLimit < 0 {
		return fmt.Errorf("server.redis.rate_limit must not be negative, got %d", cfg.Redis.RateLimit)
	}
	if cfg.Redis.MaxRequestBytes < 0 {
		return fmt.Errorf("server.redis.max_request_bytes must not be negative, got %d", cfg.Redis.MaxRequestBytes)
	}

	if cfg.Metrics.Addr == "" {
		return nil
	}
	if err := verifyAddr("server.metrics.addr", cfg.Metrics.Addr); err != nil {
		return err
	}
	if cfg.Metrics.Addr == cfg.Redis.Addr {
		return fmt.Errorf("server.metrics.addr conflicts with server.redis.addr (%s)", cfg.Redis.Addr)
	}
	return nil
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: invalid address %q: %w", key, addr, err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	if !logger.ValidFormat(cfg.Format) {
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}
