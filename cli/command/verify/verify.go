package verify

import (
	"context"
	"fmt"
	"path/filepath"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/config/configfile"
	"vecartdeploy/pkg/deploy/sumfile"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewVerifyCommand(deployCli command.Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the workspace artifacts against SHA256SUMS",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), deployCli)
		},
	}
}

func runVerify(ctx context.Context, deployCli command.Cli) error {
	dir := configfile.Resolve(deployCli.Dir(), deployCli.ConfigFile().Workspace)
	sums, err := sumfile.Read(filepath.Join(dir, sumfile.SumFile))
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		return errors.Errorf("%s lists no files", sumfile.SumFile)
	}

	if err := sumfile.Verify(ctx, dir, sums); err != nil {
		return err
	}
	fmt.Fprintf(deployCli.Out(), "%d files OK\n", len(sums))
	return nil
}
