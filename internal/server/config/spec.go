package config

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Workers WorkersSection `koanf:"workers"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP server.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// ReadChunkSize is the size of each socket read.
	ReadChunkSize int `koanf:"read_chunk_size"`

	// MaxEvents caps the events returned by one readiness wait.
	MaxEvents int `koanf:"max_events"`

	// RateLimit is the number of dispatches per second per connection.
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`

	// MaxRequestBytes caps the unparsed bytes buffered per connection.
	// 0 disables the cap.
	MaxRequestBytes int `koanf:"max_request_bytes"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the HTTP listen address for /metrics. Empty disables it.
	Addr string `koanf:"addr"`
}

// WorkersSection configures the request worker pool.
type WorkersSection struct {
	Count int `koanf:"count"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// Shards is the number of lock shards; 1 means a single lock.
	Shards int `koanf:"shards"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
