package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/relock"
	"github.com/matzehuels/relock/pkg/snapshot"
)

// runOpts holds flags for the run command.
type runOpts struct {
	previous       string
	current        string
	output         string
	projectModules []string
	review         bool
	noCache        bool
	refresh        bool
	save           bool
}

func (c *CLI) runCommand() *cobra.Command {
	opts := &runOpts{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Relock the current snapshot against the previous one",
		Long: `Run recomputes the lock file for the snapshot given with --current.
The previous snapshot comes from --previous, or, when omitted, from the local
snapshot store. With neither available the current snapshot is locked as-is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRelock(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.previous, "previous", "", "previous lock snapshot (default: snapshot store)")
	cmd.Flags().StringVar(&opts.current, "current", "package-lock.json", "current lock snapshot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringArrayVar(&opts.projectModules, "project-module", nil, "project module pattern (repeatable)")
	cmd.Flags().BoolVar(&opts.review, "review", false, "review the decision log interactively before writing")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even on a cache hit")
	cmd.Flags().BoolVar(&opts.save, "save", true, "store the current snapshot for future runs")

	return cmd
}

func (c *CLI) runRelock(cmd *cobra.Command, opts *runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	curr, err := lockfile.ReadSnapshotFile(opts.current)
	if err != nil {
		return err
	}

	var store snapshot.Store
	if fs, err := snapshot.NewFileStore(""); err != nil {
		logger.Warn("snapshot store unavailable", "err", err)
	} else {
		store = fs
	}

	prev, err := c.loadPrevious(cmd, opts, store, curr.Name)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	patterns := append(append([]string{}, c.Config.ProjectModules...), opts.projectModules...)

	spin := newSpinner(fmt.Sprintf("relocking %s", curr.Name))
	var result *relock.Result
	if prev == nil {
		result, err = runner.Bootstrap(ctx, curr, logger)
	} else {
		result, err = runner.Relock(ctx, relock.Options{
			Previous:       prev,
			Current:        curr,
			ProjectModules: patterns,
			Refresh:        opts.refresh,
			Logger:         logger,
		})
	}
	if err != nil {
		spin.StopWithError(fmt.Sprintf("relock failed: %s", errors.UserMessage(err)))
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("relocked %s (%d packages)", curr.Name, result.Stats.PlacedNodes))

	if opts.review && len(result.Decisions) > 0 {
		proceed, err := reviewDecisions(result.Decisions)
		if err != nil {
			return err
		}
		if !proceed {
			printWarning("aborted, no lock file written")
			return nil
		}
	} else {
		printDecisions(result.Decisions)
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	if _, err := out.Write(result.Output); err != nil {
		out.Close()
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write lock file")
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "close output file")
	}
	if opts.output != "" {
		printFile(opts.output)
	}

	if opts.save && store != nil {
		if err := store.Set(ctx, curr.Name, curr); err != nil {
			logger.Warn("store snapshot", "project", curr.Name, "err", err)
		}
	}

	printStats(result.Stats, result.CacheInfo.Hit)
	return nil
}

// loadPrevious resolves the previous snapshot: explicit file first, then the
// snapshot store. Returns nil when no previous snapshot exists, which puts
// the run into bootstrap mode.
func (c *CLI) loadPrevious(cmd *cobra.Command, opts *runOpts, store snapshot.Store, project string) (*lockfile.Snapshot, error) {
	if opts.previous != "" {
		return lockfile.ReadSnapshotFile(opts.previous)
	}
	if store == nil {
		return nil, nil
	}
	prev, err := store.Get(cmd.Context(), project)
	if err != nil {
		if errors.Is(err, errors.ErrCodeSnapshotNotFound) {
			printInfo(fmt.Sprintf("no stored snapshot for %s, locking current resolution as-is", project))
			return nil, nil
		}
		return nil, err
	}
	printDetail(fmt.Sprintf("previous snapshot loaded from store for %s", project))
	return prev, nil
}
