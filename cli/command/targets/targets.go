package targets

import (
	"context"
	"fmt"
	"text/tabwriter"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/deploy/target"

	"github.com/docker/docker/errdefs"
	"github.com/spf13/cobra"
)

type targetsOptions struct {
	patterns []string
	quiet    bool
}

func NewTargetsCommand(deployCli command.Cli) *cobra.Command {
	var opts targetsOptions

	cmd := &cobra.Command{
		Use:     "targets [OPTIONS]",
		Aliases: []string{"matrix"},
		Short:   "List the build matrix and the artifact each target produces",
		Args:    cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(cmd.Context(), deployCli, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.patterns, "target", "t", nil, "Only list targets matching the pattern")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Only print artifact names")

	return cmd
}

func runTargets(ctx context.Context, deployCli command.Cli, opts targetsOptions) error {
	popts, err := command.PipelineOptions(deployCli)
	if err != nil {
		return err
	}
	targets, err := target.Filter(popts.Targets, opts.patterns)
	if err != nil {
		return errdefs.InvalidParameter(err)
	}

	// Names are shown even when the version cannot be resolved yet.
	popts.AllowMissingVersion = true
	v, err := pipeline.New(popts, nil).ResolveVersion(ctx)
	if err != nil {
		return err
	}

	if opts.quiet {
		for _, t := range targets {
			fmt.Fprintln(deployCli.Out(), target.ArtifactName(popts.Product, v.String(), t))
		}
		return nil
	}

	w := tabwriter.NewWriter(deployCli.Out(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tLABEL\tICON\tARTIFACT")
	for _, t := range targets {
		icon := "-"
		if t.IsWindows() {
			icon = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Platform(), t.Label, icon, target.ArtifactName(popts.Product, v.String(), t))
	}
	return w.Flush()
}
