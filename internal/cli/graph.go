package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relock/pkg/errors"
	"github.com/matzehuels/relock/pkg/lockfile"
	"github.com/matzehuels/relock/pkg/locktree"
	"github.com/matzehuels/relock/pkg/render"
)

func (c *CLI) graphCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "graph <lockfile>",
		Short: "Render the canonical dependency tree of a lock snapshot",
		Long: `Graph builds the canonical dependency tree for a lock snapshot and renders
it as Graphviz DOT, or as SVG when the output file ends in .svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .svg or .dot (default: DOT on stdout)")
	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, lockPath, output string) error {
	logger := loggerFromContext(cmd.Context())

	snap, err := lockfile.ReadSnapshotFile(lockPath)
	if err != nil {
		return err
	}

	builder := locktree.NewBuilder(snap, locktree.NewVersionStore(), func(path, requiredFrom string) {
		logger.Warn("truncated circular requirement", "path", path, "required_from", requiredFrom)
	})
	root, err := builder.Build()
	if err != nil {
		return err
	}

	dot := render.ToDOT(root, fmt.Sprintf("%s@%s", snap.Name, snap.Version))

	data := []byte(dot)
	if strings.EqualFold(filepath.Ext(output), ".svg") {
		data, err = render.RenderSVG(dot)
		if err != nil {
			return err
		}
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write graph output")
	}
	if output != "" {
		printSuccess(fmt.Sprintf("rendered %d nodes", root.Count()))
		printFile(output)
	}
	return nil
}
