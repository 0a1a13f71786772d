package icon

import (
	"context"
	"fmt"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	deployicon "vecartdeploy/pkg/deploy/icon"
	"vecartdeploy/pkg/deploy/workspace"

	"github.com/spf13/cobra"
)

type iconOptions struct {
	logo string
	size int
}

func NewIconCommand(deployCli command.Cli) *cobra.Command {
	var opts iconOptions

	cmd := &cobra.Command{
		Use:   "icon [OPTIONS]",
		Short: "Reset the workspace and render the application icon",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIcon(cmd.Context(), deployCli, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.logo, "logo", "", "Source image (default from deploy.json)")
	flags.IntVar(&opts.size, "size", deployicon.DefaultSize, "Icon edge length in pixels (1-256)")

	return cmd
}

func runIcon(ctx context.Context, deployCli command.Cli, opts iconOptions) error {
	popts, err := command.PipelineOptions(deployCli)
	if err != nil {
		return err
	}
	logo := popts.Logo
	if opts.logo != "" {
		logo = opts.logo
	}

	gen := deployicon.NewGenerator()
	gen.Name = popts.IconName
	gen.Size = uint(opts.size)

	var path string
	err = deployCli.Progress().RunWithProgress("Rendering icon", func() error {
		var err error
		path, err = gen.Generate(ctx, logo, workspace.New(popts.WorkspaceDir))
		return err
	}, deployCli.Err())
	if err != nil {
		return err
	}

	fmt.Fprintln(deployCli.Out(), path)
	return nil
}
