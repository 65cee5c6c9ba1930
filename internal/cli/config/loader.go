package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/taskdeck-go/internal/cli/output"
	"github.com/yndnr/taskdeck-go/internal/infra/confloader"
	"github.com/yndnr/taskdeck-go/internal/storage"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".taskdeck", "cli.yaml")
}

// Load builds the configuration from defaults, the YAML file at path,
// TASKDECK_* environment variables and overrides, in increasing priority.
//
// An empty path means DefaultConfigPath. A missing file is not an error,
// so a fresh install runs on defaults. Overrides use dotted keys such as
// "retry.max".
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(defaultsMap()),
		confloader.WithOptionalConfigFile(path),
		confloader.WithOverrides(overrides),
	)

	cfg := &CLIConfig{}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *CLIConfig) Validate() error {
	var errs []error

	if !validServer(c.Server) {
		errs = append(errs, fmt.Errorf("server: invalid URL %q", c.Server))
	}
	if _, err := output.ParseFormat(c.Output); err != nil {
		errs = append(errs, fmt.Errorf("output: %w", err))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout: must be positive, got %s", c.Timeout))
	}
	if c.Retry.Max < 0 {
		errs = append(errs, fmt.Errorf("retry.max: must not be negative, got %d", c.Retry.Max))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, fmt.Errorf("retry.delay: must not be negative, got %s", c.Retry.Delay))
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("ratelimit: rps and burst must not be negative"))
	}
	switch c.Store.Driver {
	case storage.DriverMemory, storage.DriverFile, storage.DriverBadger:
	default:
		errs = append(errs, fmt.Errorf("store.driver: %w %q", storage.ErrUnknownDriver, c.Store.Driver))
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// validServer accepts http(s) URLs and bare host[:port] values, which the
// transport treats as http.
func validServer(s string) bool {
	if s == "" {
		return false
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
