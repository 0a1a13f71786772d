package ls

import (
	"fmt"
	"os"
	"text/tabwriter"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/config/configfile"
	"vecartdeploy/pkg/deploy/workspace"

	"github.com/docker/go-units"
	"github.com/morikuni/aec"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type lsOptions struct {
	quiet bool
}

func NewLsCommand(deployCli command.Cli) *cobra.Command {
	var opts lsOptions

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the contents of the workspace",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(deployCli, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only print file names")

	return cmd
}

func runLs(deployCli command.Cli, opts lsOptions) error {
	dir := configfile.Resolve(deployCli.Dir(), deployCli.ConfigFile().Workspace)
	entries, err := workspace.New(dir).Entries()
	if errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("no workspace at %s, run `vecart-deploy build` first", dir)
	}
	if err != nil {
		return err
	}

	if opts.quiet {
		for _, e := range entries {
			fmt.Fprintln(deployCli.Out(), e.Name)
		}
		return nil
	}

	colorize := deployCli.Out().IsColorEnabled()
	var total int64
	w := tabwriter.NewWriter(deployCli.Out(), 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, e := range entries {
		name := e.Name
		if colorize && e.Mode&0o111 != 0 {
			name = aec.GreenF.Apply(name)
		}
		fmt.Fprintf(w, "%s\t  %s\t\n", units.HumanSize(float64(e.Size)), name)
		total += e.Size
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(deployCli.Out(), "%d files, %s in %s\n", len(entries), units.HumanSize(float64(total)), dir)
	return nil
}
