package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/taskdeck-go/internal/infra/buildinfo"
)

const envKey = "env"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    buildinfo.Product,
		Usage:   "Task API command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			StatusCommand(),
			TaskCommand(),
			ConfigCommand(),
			ShellCommand(),
		},
		Metadata: map[string]any{},
		Before: func(c *cli.Context) error {
			env, err := newEnv(c)
			if err != nil {
				return err
			}
			c.App.Metadata[envKey] = env
			return nil
		},
		After: func(c *cli.Context) error {
			env, ok := c.App.Metadata[envKey].(*Env)
			if !ok {
				return nil
			}
			return env.Close(c.Context)
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.taskdeck/cli.yaml)",
			EnvVars: []string{"TASKDECK_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Task API base URL (e.g., http://localhost:8000)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-attempt request timeout",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// flagOverrides maps explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	if c.IsSet("server") {
		overrides["server"] = c.String("server")
	}
	if c.IsSet("output") {
		overrides["output"] = c.String("output")
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout")
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

// envFrom retrieves the run environment built by the Before hook.
func envFrom(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env, nil
	}
	return nil, fmt.Errorf("command environment not initialized")
}

// printMessage writes a status line to the app's stdout.
func printMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
