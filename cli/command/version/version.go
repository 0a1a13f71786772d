package version

import (
	"context"
	"fmt"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	toolversion "vecartdeploy/cli/version"
	"vecartdeploy/pkg/deploy/pipeline"

	"github.com/morikuni/aec"
	"github.com/spf13/cobra"
)

type versionOptions struct {
	short  bool
	strict bool
}

func NewVersionCommand(deployCli command.Cli) *cobra.Command {
	var opts versionOptions

	cmd := &cobra.Command{
		Use:   "version [OPTIONS]",
		Short: "Show the application version the release would carry",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), deployCli, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.short, "short", "s", false, "Only print the version")
	flags.BoolVar(&opts.strict, "strict", false, "Fail when the version is not a semantic version")

	return cmd
}

func runVersion(ctx context.Context, deployCli command.Cli, opts versionOptions) error {
	popts, err := command.PipelineOptions(deployCli)
	if err != nil {
		return err
	}
	popts.StrictVersion = opts.strict

	v, err := pipeline.New(popts, nil).ResolveVersion(ctx)
	if err != nil {
		return err
	}

	out := deployCli.Out()
	if opts.short {
		fmt.Fprintln(out, v.String())
		return nil
	}

	fmt.Fprintf(out, "Version:    %s\n", v)
	fmt.Fprintf(out, "Source:     %s\n", popts.VersionFile)
	if sv, err := v.Semver(); err == nil {
		fmt.Fprintf(out, "Semver:     %s (major %d, minor %d, patch %d)\n", sv, sv.Major(), sv.Minor(), sv.Patch())
		if sv.Prerelease() != "" {
			fmt.Fprintf(out, "Prerelease: %s\n", sv.Prerelease())
		}
	} else {
		fmt.Fprintf(out, "Semver:     %s\n", deployCli.Out().With(aec.YellowF).Sprint("not a semantic version"))
	}
	fmt.Fprintf(out, "Tool:       vecart-deploy %s\n", toolversion.String())
	return nil
}
