package init

import (
	"fmt"
	"os"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/config"
	"vecartdeploy/pkg/config/configfile"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type initOptions struct {
	force bool
}

func NewInitCommand(deployCli command.Cli) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a deploy.json with the default settings",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(deployCli, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing deploy.json")

	return cmd
}

func runInit(deployCli command.Cli, opts initOptions) error {
	path := config.Path(deployCli.Dir())
	if _, err := os.Stat(path); err == nil && !opts.force {
		return errors.Errorf("%s already exists, use --force to overwrite it", path)
	}

	cfg := configfile.New(path)
	if err := cfg.Save(); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	fmt.Fprintf(deployCli.Out(), "Wrote %s\n", path)
	return nil
}
