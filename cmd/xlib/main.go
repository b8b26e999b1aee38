package main

import (
	"fmt"
	"os"

	"xlib-go/pkg/config"
	"xlib-go/pkg/log"

	"github.com/urfave/cli/v2"
)

// Version information - will be set at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configKey = "config"

func main() {
	app := &cli.App{
		Name:    "xlib",
		Usage:   "hash table store, kson and kexpr tooling",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file `PATH` (default: xlib.yaml lookup)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log `LEVEL` (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-db",
				Usage: "SQLite log sink `FILE`; logs go to stderr when unset",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Snapshot `FILE` used by kv and serve",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			return log.Close()
		},
		Commands: []*cli.Command{
			ksonCommand,
			exprCommand,
			kvCommand,
			serveCommand,
			ctlCommand,
			logsCommand,
			benchCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies the global flags on top and starts
// logging. The result is stored in the app metadata for the commands.
func setup(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-db") {
		cfg.LogDB = c.String("log-db")
	}
	if c.IsSet("store") {
		cfg.StorePath = c.String("store")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if cfg.LogDB != "" {
		if err := log.Init(cfg.LogDB); err != nil {
			return cli.Exit(fmt.Sprintf("Error initializing log sink: %v", err), 1)
		}
	} else {
		log.SetStd()
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.Debug().Str("config", cfg.ConfigFile).Str("store", cfg.StoreFile()).Msg("configuration ready")

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func getConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}
