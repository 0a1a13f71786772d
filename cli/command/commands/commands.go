package commands

import (
	"vecartdeploy/cli/command"
	"vecartdeploy/cli/command/build"
	"vecartdeploy/cli/command/clean"
	"vecartdeploy/cli/command/icon"
	deployInit "vecartdeploy/cli/command/init"
	"vecartdeploy/cli/command/ls"
	"vecartdeploy/cli/command/targets"
	"vecartdeploy/cli/command/verify"
	"vecartdeploy/cli/command/version"

	"github.com/spf13/cobra"
)

func AddCommands(cmd *cobra.Command, deployCli command.Cli) {
	cmd.AddCommand(
		build.NewBuildCommand(deployCli),
		version.NewVersionCommand(deployCli),
		targets.NewTargetsCommand(deployCli),
		icon.NewIconCommand(deployCli),
		ls.NewLsCommand(deployCli),
		clean.NewCleanCommand(deployCli),
		verify.NewVerifyCommand(deployCli),
		deployInit.NewInitCommand(deployCli),
	)
}
