package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server != "127.0.0.1:6379" {
		t.Errorf("Server = %q, want %q", cfg.Server, "127.0.0.1:6379")
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Output != "text" {
		t.Errorf("Output = %q, want %q", cfg.Output, "text")
	}
	if cfg.Connections == nil {
		t.Error("Connections should not be nil")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Error("Path should be absolute")
	}
	if filepath.Base(filepath.Dir(path)) != ".respkv" || filepath.Base(path) != "cli.yaml" {
		t.Errorf("Path = %q, should end with .respkv/cli.yaml", path)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/cli.yaml")
	if err != nil {
		t.Fatalf("Load should not error for nonexistent file: %v", err)
	}
	if cfg.Server != Default().Server {
		t.Errorf("Server = %q, want default", cfg.Server)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "cli.yaml")

	cfg := Default()
	cfg.Server = "10.0.0.1:6380"
	cfg.Timeout = 1500 * time.Millisecond
	cfg.Output = "json"
	cfg.Connections["prod"] = "10.0.0.2:6379"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %v, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Server != cfg.Server || got.Timeout != cfg.Timeout || got.Output != cfg.Output {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
	if got.Connections["prod"] != "10.0.0.2:6379" {
		t.Errorf("Connections[prod] = %q", got.Connections["prod"])
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("server: file:6379\noutput: json\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("RESPKV_CLI_SERVER", "env:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server != "env:6379" {
		t.Errorf("Server = %q, want %q", cfg.Server, "env:6379")
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want %q", cfg.Output, "json")
	}
}

func TestCLIConfig_Resolve(t *testing.T) {
	cfg := Default()
	cfg.Connections["prod"] = "10.0.0.2:6379"

	tests := []struct {
		server string
		want   string
	}{
		{"prod", "10.0.0.2:6379"},
		{"localhost:7000", "localhost:7000"},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			if got := cfg.Resolve(tt.server); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.server, got, tt.want)
			}
		})
	}
}
