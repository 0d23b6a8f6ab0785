package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
)

func (c *CLI) bootstrapCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bootstrap <package-lock.json> <package.json>",
		Short: "Build a canonical lock file from an existing lock and manifest",
		Long: `Bootstrap converts an existing lock file into the canonical relocked form
without a previous snapshot: the manifest supplies the top-level requirement
ranges and the current resolution is locked as-is.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBootstrap(cmd, args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) runBootstrap(cmd *cobra.Command, lockPath, manifestPath, output string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(lockPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read lock file %s", lockPath)
	}
	var lf lockfile.Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidLockfile, err, "parse lock file %s", lockPath)
	}

	manifest, err := lockfile.ReadManifestFile(manifestPath)
	if err != nil {
		return err
	}

	snap := lf.Snapshot(manifest.CombinedRequires())

	runner, err := c.newRunner(true)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(fmt.Sprintf("bootstrapping %s", snap.Name))
	result, err := runner.Bootstrap(ctx, snap, logger)
	if err != nil {
		spin.StopWithError(fmt.Sprintf("bootstrap failed: %s", errors.UserMessage(err)))
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("bootstrapped %s (%d packages)", snap.Name, result.Stats.PlacedNodes))

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(result.Output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write lock file")
	}
	if output != "" {
		printFile(output)
	}
	return nil
}
