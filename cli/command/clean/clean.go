package clean

import (
	"context"
	"fmt"
	"os"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"

	"github.com/spf13/cobra"
)

type cleanOptions struct {
	yes bool
}

func NewCleanCommand(deployCli command.Cli) *cobra.Command {
	var opts cleanOptions

	cmd := &cobra.Command{
		Use:   "clean [OPTIONS]",
		Short: "Remove the workspace and everything in it",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), deployCli, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Do not prompt for confirmation")

	return cmd
}

func runClean(ctx context.Context, deployCli command.Cli, opts cleanOptions) error {
	popts, err := command.PipelineOptions(deployCli)
	if err != nil {
		return err
	}
	ws := command.Workspace(popts)
	dir := ws.Dir()
	if _, err := os.Lstat(dir); os.IsNotExist(err) {
		fmt.Fprintln(deployCli.Out(), "Nothing to clean")
		return nil
	}

	if !opts.yes {
		ok, err := command.PromptForConfirmation(ctx, deployCli.In(), deployCli.Out(), fmt.Sprintf("Remove %s?", dir))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(deployCli.Out(), "Aborted")
			return nil
		}
	}

	if err := ws.Remove(ctx); err != nil {
		return err
	}
	fmt.Fprintf(deployCli.Out(), "Removed %s\n", dir)
	return nil
}
