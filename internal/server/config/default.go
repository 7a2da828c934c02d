package config

import "runtime"

// Default configuration values.
const (
	DefaultRedisAddr       = "127.0.0.1:6379"
	DefaultReadChunkSize   = 1024
	DefaultMaxEvents       = 128
	DefaultRateLimit       = 0
	DefaultMaxRequestBytes = 512 << 20

	DefaultStorageShards = 1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultWorkers returns the default worker count, one per CPU.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:            DefaultRedisAddr,
				ReadChunkSize:   DefaultReadChunkSize,
				MaxEvents:       DefaultMaxEvents,
				RateLimit:       DefaultRateLimit,
				MaxRequestBytes: DefaultMaxRequestBytes,
			},
		},
		Workers: WorkersSection{
			Count: DefaultWorkers(),
		},
		Storage: StorageSection{
			Shards: DefaultStorageShards,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
