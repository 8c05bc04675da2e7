package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ebuildkit/histscan/internal/history"
	"github.com/ebuildkit/histscan/internal/output"
)

// HistoryCmd creates the history query command.
func HistoryCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Query recorded package change history",
		ArgsUsage: "[CATEGORY[/PACKAGE]]",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Status filter (changed, modified, added, removed)",
				Value: "changed",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (console, json)",
				Value:   "console",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Query local commits not on the remote head instead of cached history",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Rebuild the history cache from scratch",
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed loading config: %v", err), 2)
	}
	repoPath, err := repoTarget(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	filter, err := statusFilter(c.String("filter"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	writer, err := output.NewHistoryWriter(c.String("format"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	category, pkg := splitTarget(c.Args().First())

	addon := newAddon(c, cfg)
	if !addon.Enabled() {
		return cli.Exit("git support is disabled", 2)
	}

	var repo history.Repo
	if c.Bool("local") {
		repo = addon.CommitsRepo(c.Context, repoPath, filter)
	} else {
		if err := addon.UpdateCache(c.Context, []string{repoPath}, c.Bool("force")); err != nil {
			return cli.Exit(fmt.Sprintf("failed updating git cache: %v", err), 1)
		}
		repo = addon.CachedRepo(filter, repoPath)
	}
	if repo == nil {
		return cli.Exit("no git history available for this repository", 1)
	}

	report := &output.HistoryReport{
		RepoID: repo.ID(),
		Events: collectEvents(repo, category, pkg),
	}
	return writer.Write(report)
}

func splitTarget(arg string) (category, pkg string) {
	if arg == "" {
		return "", ""
	}
	category, pkg, _ = strings.Cut(arg, "/")
	return category, pkg
}
