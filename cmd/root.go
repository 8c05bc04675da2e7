// Package cmd builds the histscan command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ebuildkit/histscan/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "histscan",
		Usage:   "Git history support for ebuild repository scans",
		Version: "0.1.0",
		Commands: []*cli.Command{
			ScanCmd(),
			CacheCmd(),
			HistoryCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
	}
}

// commonFlags are shared by all subcommands.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to the target ebuild repository",
			Value:   ".",
		},
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	return config.Load(c.String("config"))
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
