package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	"vecartdeploy/cli/command/build"
	"vecartdeploy/cli/command/commands"
	"vecartdeploy/cli/version"

	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	deployCli, err := command.NewDeployCli()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = newDeployCommand(deployCli).ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(deployCli.Err(), "vecart-deploy:", err)
		os.Exit(exitCode(err))
	}
}

func newDeployCommand(deployCli *command.DeployCli) *cobra.Command {
	var buildOpts build.Options

	cmd := &cobra.Command{
		Use:              "vecart-deploy [OPTIONS] [COMMAND]",
		Short:            "Build and package Vecart releases",
		Long:             "Build and package Vecart releases.\n\nWithout a command, runs the full release pipeline (same as \"build\").",
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		Args:             cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buildOpts.MarkSet(cmd.Flags())
			return build.RunBuild(cmd.Context(), deployCli, buildOpts)
		},
		Version: version.String(),
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd:    true,
			DisableDescriptions: true,
		},
	}

	opts := cli.SetupRootCommand(cmd)
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return deployCli.Initialize(opts)
	}
	build.InstallFlags(cmd.Flags(), &buildOpts)

	commands.AddCommands(cmd, deployCli)
	cli.DisableFlagsInUseLine(cmd)

	return cmd
}

// exitCode maps an error to the process exit status: 2 for usage and
// configuration errors, 130 for interrupts, 1 otherwise.
func exitCode(err error) int {
	switch {
	case errdefs.IsInvalidParameter(err):
		return 2
	case errdefs.IsCancelled(err), errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
