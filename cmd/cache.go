package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

// CacheCmd creates the cache maintenance command.
func CacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Maintain per-repository git history caches",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update the history cache for a repository",
				Flags: append(commonFlags(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-parse the full history instead of merging incrementally",
					},
				),
				Action: cacheUpdateAction,
			},
			{
				Name:   "remove",
				Usage:  "Remove the history cache for a repository",
				Flags:  commonFlags(),
				Action: cacheRemoveAction,
			},
		},
	}
}

func cacheUpdateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed loading config: %v", err), 2)
	}
	repoPath, err := repoTarget(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	addon := newAddon(c, cfg)
	if !addon.Enabled() {
		return cli.Exit("git support is disabled", 2)
	}
	if err := addon.UpdateCache(c.Context, []string{repoPath}, c.Bool("force")); err != nil {
		return cli.Exit(fmt.Sprintf("failed updating git cache: %v", err), 1)
	}
	color.Green("updated git cache for %s", repoPath)
	return nil
}

func cacheRemoveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed loading config: %v", err), 2)
	}
	repoPath, err := repoTarget(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	addon := newAddon(c, cfg)
	if err := addon.RemoveCache([]string{repoPath}); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	color.Green("removed git cache for %s", repoPath)
	return nil
}
