package config

import (
	"time"

	"github.com/yndnr/taskdeck-go/internal/storage"
)

// CLIConfig is the configuration for taskdeck-cli (~/.taskdeck/cli.yaml).
type CLIConfig struct {
	// Server is the task API base URL.
	Server string `koanf:"server" yaml:"server"`
	// Output is the default output format (table, json, yaml).
	Output string `koanf:"output" yaml:"output"`
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	Retry     RetryConfig     `koanf:"retry" yaml:"retry"`
	RateLimit RateLimitConfig `koanf:"ratelimit" yaml:"ratelimit"`
	TLS       TLSConfig       `koanf:"tls" yaml:"tls"`
	Store     storage.Config  `koanf:"store" yaml:"store"`
	Log       LogConfig       `koanf:"log" yaml:"log"`
	Metrics   MetricsConfig   `koanf:"metrics" yaml:"metrics"`
}

// RetryConfig is the transient retry budget.
type RetryConfig struct {
	Max   int           `koanf:"max" yaml:"max"`
	Delay time.Duration `koanf:"delay" yaml:"delay"`
}

// RateLimitConfig throttles outgoing requests. RPS 0 disables the limiter.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" yaml:"rps"`
	Burst int     `koanf:"burst" yaml:"burst"`
}

// TLSConfig holds client TLS settings.
type TLSConfig struct {
	// CAFile is an extra PEM bundle trusted on top of the system roots.
	CAFile string `koanf:"cafile" yaml:"cafile,omitempty"`
}

type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsConfig controls the metrics textfile written when a command exits.
type MetricsConfig struct {
	File string `koanf:"file" yaml:"file,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "http://localhost:8000",
		Output:  "table",
		Timeout: 10 * time.Second,
		Retry: RetryConfig{
			Max:   3,
			Delay: time.Second,
		},
		RateLimit: RateLimitConfig{Burst: 1},
		Store:     storage.Config{Driver: storage.DriverFile},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// defaultsMap flattens Default into the dotted keys the loader expects.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"server":          d.Server,
		"output":          d.Output,
		"timeout":         d.Timeout,
		"retry.max":       d.Retry.Max,
		"retry.delay":     d.Retry.Delay,
		"ratelimit.rps":   d.RateLimit.RPS,
		"ratelimit.burst": d.RateLimit.Burst,
		"tls.cafile":      d.TLS.CAFile,
		"store.driver":    d.Store.Driver,
		"store.path":      d.Store.Path,
		"log.level":       d.Log.Level,
		"log.format":      d.Log.Format,
		"metrics.file":    d.Metrics.File,
	}
}
