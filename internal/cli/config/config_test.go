package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/taskdeck-go/internal/storage"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server != "http://localhost:8000" {
		t.Errorf("Server = %q, want %q", cfg.Server, "http://localhost:8000")
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Retry.Max != 3 || cfg.Retry.Delay != time.Second {
		t.Errorf("Retry = %+v, want 3 x 1s", cfg.Retry)
	}
	if cfg.Store.Driver != storage.DriverFile {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, storage.DriverFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Path %q should be absolute", path)
	}
	expected := filepath.Join(".taskdeck", "cli.yaml")
	if !strings.HasSuffix(path, expected) {
		t.Errorf("Path = %q, should end with %q", path, expected)
	}
}

func TestLoad_EmptyPathWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server != Default().Server {
		t.Errorf("Server = %q, want default", cfg.Server)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("Load should not error for nonexistent file: %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want default", cfg.Output)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}

func TestLoad_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := `server: https://tasks.example.com
output: json
timeout: 5s
retry:
  max: 5
  delay: 250ms
store:
  driver: memory
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKDECK_RETRY_MAX", "7")
	t.Setenv("TASKDECK_LOG_LEVEL", "debug")

	cfg, err := Load(path, map[string]any{"output": "yaml"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server != "https://tasks.example.com" {
		t.Errorf("Server = %q, want file value", cfg.Server)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Retry.Delay != 250*time.Millisecond {
		t.Errorf("Retry.Delay = %v, want 250ms", cfg.Retry.Delay)
	}
	if cfg.Retry.Max != 7 {
		t.Errorf("Retry.Max = %d, want env value 7", cfg.Retry.Max)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env value", cfg.Log.Level)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want override", cfg.Output)
	}
	if cfg.Store.Driver != storage.DriverMemory {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
	// Untouched keys keep their defaults.
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want default", cfg.Log.Format)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("output: xml\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, nil)
	if err == nil {
		t.Fatal("Load() should reject an unknown output format")
	}
	if !strings.Contains(err.Error(), "output") {
		t.Errorf("error %q should name the output key", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
		want   string
	}{
		{"empty server", func(c *CLIConfig) { c.Server = "" }, "server"},
		{"bad scheme", func(c *CLIConfig) { c.Server = "ftp://host" }, "server"},
		{"zero timeout", func(c *CLIConfig) { c.Timeout = 0 }, "timeout"},
		{"negative retries", func(c *CLIConfig) { c.Retry.Max = -1 }, "retry.max"},
		{"negative delay", func(c *CLIConfig) { c.Retry.Delay = -time.Second }, "retry.delay"},
		{"negative rps", func(c *CLIConfig) { c.RateLimit.RPS = -1 }, "ratelimit"},
		{"unknown driver", func(c *CLIConfig) { c.Store.Driver = "redis" }, "store.driver"},
		{"unknown level", func(c *CLIConfig) { c.Log.Level = "loud" }, "log.level"},
		{"unknown log format", func(c *CLIConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ServerWithoutScheme(t *testing.T) {
	cfg := Default()
	cfg.Server = "localhost:8000"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, a bare host:port is accepted", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "cli.yaml")

	cfg := Default()
	cfg.Server = "https://tasks.example.com"
	cfg.Retry.Max = 1
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server != cfg.Server || loaded.Retry.Max != 1 {
		t.Errorf("loaded = %+v, want saved values", loaded)
	}
	if loaded.Timeout != cfg.Timeout {
		t.Errorf("Timeout = %v, want %v", loaded.Timeout, cfg.Timeout)
	}
}
