package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/ebuildkit/histscan/config"
	"github.com/ebuildkit/histscan/internal/git"
	"github.com/ebuildkit/histscan/internal/output"
	"github.com/ebuildkit/histscan/internal/scope"
)

// ScanCmd creates the scan command.
func ScanCmd() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Determine scan targets from committed changes against a reference",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "commits",
				Usage: "Reference commit to diff against (defaults to the configured remote head)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Rebuild the history cache from scratch",
			},
		),
		Action: scanAction,
	}
}

func scanAction(c *cli.Context) (retErr error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed loading config: %v", err), 2)
	}
	repoPath, err := repoTarget(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ref := c.String("commits")
	if ref == "" {
		ref = cfg.Git.Reference
	}

	cats, err := categoryDirs(repoPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed listing categories: %v", err), 1)
	}

	ctx := c.Context
	restrict, err := scope.Resolve(ctx, repoPath, ref, cats, hasEclassDir(repoPath))
	switch {
	case errors.Is(err, scope.ErrNothingToScan):
		// clean termination: nothing diverges from the reference
		color.Green("no changes against %s, nothing to scan", ref)
		return nil
	case errors.Is(err, git.ErrGitUnavailable):
		return cli.Exit(err.Error(), 2)
	case err != nil:
		return cli.Exit(err.Error(), 1)
	}

	// shelve uncommitted state for the duration of the scan
	guard, err := git.AcquireStash(ctx, repoPath, cfg.Git.StashLabel)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	// release runs on every exit path, with a fresh context so
	// restoration still works after an interrupt cancelled ctx
	defer func() {
		if err := guard.Release(context.WithoutCancel(ctx)); err != nil {
			retErr = cli.Exit(err.Error(), 1)
		}
	}()
	return runScan(c, cfg, repoPath, ref, restrict)
}

func runScan(c *cli.Context, cfg config.Config, repoPath, ref string, restrict *scope.Scope) error {
	ctx := c.Context
	addon := newAddon(c, cfg)
	if err := addon.UpdateCache(ctx, []string{repoPath}, c.Bool("force")); err != nil {
		return cli.Exit(fmt.Sprintf("failed updating git cache: %v", err), 1)
	}

	report := &output.ScopeReport{Reference: ref}
	for _, a := range restrict.Atoms {
		report.Atoms = append(report.Atoms, a.CP())
	}
	report.Eclasses = restrict.Eclasses
	output.WriteScope(report)

	// summarize the local commits the scope came from
	commits, err := addon.Commits(ctx, repoPath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(commits) > 0 {
		fmt.Println()
		color.Green("Local commits under scan")
		for _, commit := range commits {
			subject := ""
			if len(commit.Message) > 0 {
				subject = commit.Message[0]
			}
			fmt.Printf("  %s %s %s\n", commit.Hash, commit.Date, subject)
		}
	}
	return nil
}
