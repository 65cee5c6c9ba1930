package command

import (
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/taskdeck-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	return env.Print(configView(env.Config))
}

// configView flattens cfg into dotted keys. The passphrase is masked.
func configView(cfg *config.CLIConfig) map[string]string {
	passphrase := ""
	if cfg.Store.Passphrase != "" {
		passphrase = "******"
	}
	return map[string]string{
		"server":           cfg.Server,
		"output":           cfg.Output,
		"timeout":          cfg.Timeout.String(),
		"retry.max":        strconv.Itoa(cfg.Retry.Max),
		"retry.delay":      cfg.Retry.Delay.String(),
		"ratelimit.rps":    strconv.FormatFloat(cfg.RateLimit.RPS, 'g', -1, 64),
		"ratelimit.burst":  strconv.Itoa(cfg.RateLimit.Burst),
		"tls.cafile":       cfg.TLS.CAFile,
		"store.driver":     cfg.Store.Driver,
		"store.path":       cfg.Store.Path,
		"store.passphrase": passphrase,
		"log.level":        cfg.Log.Level,
		"log.format":       cfg.Log.Format,
		"metrics.file":     cfg.Metrics.File,
	}
}

func configPath(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	printMessage(env.Out, "%s", env.ConfigPath)
	return nil
}

func configInit(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	if _, err := os.Stat(env.ConfigPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", env.ConfigPath)
	}
	if err := config.Save(env.Config, env.ConfigPath); err != nil {
		return err
	}
	printMessage(env.Out, "Wrote %s", env.ConfigPath)
	return nil
}
