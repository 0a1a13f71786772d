package cli

import (
	"fmt"
	"strings"

	"github.com/docker/docker/errdefs"
	"github.com/spf13/cobra"
)

// NoArgs validates args and returns an error if there are any args.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}

	if cmd.HasSubCommands() {
		return errdefs.InvalidParameter(fmt.Errorf(
			"\n%s", strings.Join([]string{cmd.Name() + " does not accept arguments", "", cmd.UsageString()}, "\n")))
	}

	return errdefs.InvalidParameter(fmt.Errorf(
		"%q accepts no arguments.\nSee '%s --help'.\n\nUsage:  %s\n\n%s",
		cmd.CommandPath(),
		cmd.CommandPath(),
		cmd.UseLine(),
		cmd.Short,
	))
}
