package command

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/taskdeck-go/internal/cli/config"
	"github.com/yndnr/taskdeck-go/internal/cli/output"
	"github.com/yndnr/taskdeck-go/internal/client/api"
	"github.com/yndnr/taskdeck-go/internal/client/session"
	"github.com/yndnr/taskdeck-go/internal/client/transport"
	"github.com/yndnr/taskdeck-go/internal/infra/buildinfo"
	"github.com/yndnr/taskdeck-go/internal/infra/shutdown"
	"github.com/yndnr/taskdeck-go/internal/infra/tlsroots"
	"github.com/yndnr/taskdeck-go/internal/storage"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
	"github.com/yndnr/taskdeck-go/internal/telemetry/metric"
)

// Env holds everything one CLI run needs. The client side (store, session,
// API) is built on first use so config commands work without touching the
// token store.
type Env struct {
	Config     *config.CLIConfig
	ConfigPath string
	Log        logger.Logger
	Out        io.Writer
	ErrOut     io.Writer
	Wide       bool

	metrics *metric.Registry
	cleanup *shutdown.Handler

	once       sync.Once
	connectErr error
	session    *session.Manager
	api        *api.Client
}

// cleanupTimeout bounds the work done by Close.
const cleanupTimeout = 5 * time.Second

func newEnv(c *cli.Context) (*Env, error) {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	logger.SetDefault(log)

	gatherer := prometheus.NewRegistry()
	metrics, err := metric.NewRegistry(gatherer)
	if err != nil {
		return nil, err
	}

	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}

	env := &Env{
		Config:     cfg,
		ConfigPath: path,
		Log:        log,
		Out:        c.App.Writer,
		ErrOut:     c.App.ErrWriter,
		Wide:       c.Bool("wide"),
		metrics:    metrics,
		cleanup:    shutdown.NewHandler(cleanupTimeout),
	}
	env.cleanup.OnShutdown(func(context.Context) error {
		return metric.WriteTextfile(cfg.Metrics.File, gatherer)
	})
	return env, nil
}

// connect opens the token store and builds the session and API client.
func (e *Env) connect(ctx context.Context) error {
	e.once.Do(func() {
		e.connectErr = e.buildClient(ctx)
	})
	return e.connectErr
}

func (e *Env) buildClient(ctx context.Context) error {
	cfg := e.Config

	store, closeStore, err := storage.Open(cfg.Store, e.Log)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	e.cleanup.OnShutdown(func(context.Context) error {
		if err := closeStore(); err != nil {
			return fmt.Errorf("close token store: %w", err)
		}
		return nil
	})

	if fs, ok := store.(*storage.FileStore); ok {
		watchCtx, cancel := context.WithCancel(ctx)
		if err := fs.Watch(watchCtx); err != nil {
			cancel()
			e.Log.Warn("token file watch disabled", "error", err)
		} else {
			e.cleanup.OnShutdown(func(context.Context) error {
				cancel()
				return nil
			})
		}
	}

	opts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithRetry(cfg.Retry.Max, cfg.Retry.Delay),
		transport.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		transport.WithUserAgent(buildinfo.UserAgent()),
		transport.WithLogger(e.Log),
		transport.WithMetrics(e.metrics),
	}
	tlsCfg, err := tlsroots.ClientConfig(cfg.TLS.CAFile)
	if err != nil {
		return fmt.Errorf("load CA file: %w", err)
	}
	if tlsCfg != nil {
		opts = append(opts, transport.WithTLSConfig(tlsCfg))
	}
	tr := transport.New(cfg.Server, opts...)

	e.session = session.New(store, tr,
		session.WithLogger(e.Log),
		session.WithMetrics(e.metrics),
	)
	e.api = api.New(e.session, tr,
		api.WithLogger(e.Log),
		api.WithMetrics(e.metrics),
		api.OnSessionExpired(func() {
			printMessage(e.ErrOut, "Session expired. Run `%s login` to sign in again.", buildinfo.Product)
		}),
	)
	return nil
}

// Session returns the session manager, connecting first if needed.
func (e *Env) Session(ctx context.Context) (*session.Manager, error) {
	if err := e.connect(ctx); err != nil {
		return nil, err
	}
	return e.session, nil
}

// API returns the task API client, connecting first if needed.
func (e *Env) API(ctx context.Context) (*api.Client, error) {
	if err := e.connect(ctx); err != nil {
		return nil, err
	}
	return e.api, nil
}

// Print renders data in the configured output format.
func (e *Env) Print(data any) error {
	format, err := output.ParseFormat(e.Config.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, e.Wide).Format(e.Out, data)
}

// Close stops the store watcher, releases the token store and writes the
// metrics textfile, in that order.
func (e *Env) Close(ctx context.Context) error {
	return e.cleanup.Run(ctx)
}
