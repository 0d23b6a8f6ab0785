package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/snapshot"
)

func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored lock snapshots",
	}

	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())
	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with a stored snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.NewFileStore("")
			if err != nil {
				return err
			}
			projects, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				printInfo("no stored snapshots")
				return nil
			}
			for _, project := range projects {
				fmt.Println(project)
			}
			return nil
		},
	}
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.NewFileStore("")
			if err != nil {
				return err
			}
			snap, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return lockfile.Write(snap, os.Stdout)
		},
	}
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.NewFileStore("")
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("deleted snapshot for %s", args[0]))
			return nil
		},
	}
}
