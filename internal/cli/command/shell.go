package command

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/taskdeck-go/internal/cli/config"
	"github.com/yndnr/taskdeck-go/internal/cli/repl"
	"github.com/yndnr/taskdeck-go/internal/infra/buildinfo"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive session",
		Description: "Runs commands line by line against one session. Global flags are\n" +
			"fixed when the shell starts.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file (empty to disable)",
				Value: filepath.Join(filepath.Dir(config.DefaultConfigPath()), "history"),
			},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	history := repl.NewHistory(c.String("history"), repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		env.Log.Warn("history not loaded", "error", err)
	}

	exec := func(ctx context.Context, args []string) error {
		if args[0] == "shell" {
			return errors.New("already in the shell")
		}
		sub := App()
		sub.Before = nil
		sub.After = nil
		sub.Metadata[envKey] = env
		sub.Reader = c.App.Reader
		sub.Writer = c.App.Writer
		sub.ErrWriter = c.App.ErrWriter
		return sub.RunContext(ctx, append([]string{buildinfo.Product}, args...))
	}

	r := repl.New(exec, repl.NewCompleter(commandPaths(c.App.Commands, "")),
		repl.WithInput(c.App.Reader),
		repl.WithOutput(c.App.Writer),
		repl.WithHistory(history),
	)
	runErr := r.Run(c.Context)
	if err := history.Save(); err != nil {
		env.Log.Warn("history not saved", "error", err)
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// commandPaths lists every command as its space-separated path, skipping
// hidden commands and the shell itself.
func commandPaths(cmds []*cli.Command, parent string) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden || cmd.Name == "shell" || cmd.Name == "help" {
			continue
		}
		path := cmd.Name
		if parent != "" {
			path = parent + " " + cmd.Name
		}
		paths = append(paths, path)
		paths = append(paths, commandPaths(cmd.Subcommands, path)...)
	}
	return paths
}
