package config

import "time"

// CLIConfig is the configuration for respkv-cli.
type CLIConfig struct {
	Server  string        `koanf:"server" yaml:"server"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	Output  string        `koanf:"output" yaml:"output"` // text, json, yaml, raw

	// Saved connections, name to address.
	Connections map[string]string `koanf:"connections" yaml:"connections,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "127.0.0.1:6379",
		Timeout:     5 * time.Second,
		Output:      "text",
		Connections: make(map[string]string),
	}
}

// Resolve maps a saved connection name to its address. Anything else is
// returned unchanged.
func (c *CLIConfig) Resolve(server string) string {
	if addr, ok := c.Connections[server]; ok {
		return addr
	}
	return server
}
