package build

import (
	"context"
	"fmt"

	"vecartdeploy/cli"
	"vecartdeploy/cli/command"
	"vecartdeploy/pkg/archive"
	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/log"

	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Options are the flags of the build command. Flags left unset keep the
// values of deploy.json.
type Options struct {
	Targets             []string
	OnFailure           string
	KeepGoing           bool
	Checksums           bool
	Archive             string
	Injector            string
	AllowMissingVersion bool
	StrictVersion       bool

	checksumsSet bool
	archiveSet   bool
}

func NewBuildCommand(deployCli command.Cli) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "build [OPTIONS]",
		Short: "Build the release artifacts",
		Long: `Resolve the application version, reset the workspace, render the icon
and build every target of the matrix into the workspace.`,
		Args: cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.MarkSet(cmd.Flags())
			return RunBuild(cmd.Context(), deployCli, opts)
		},
	}

	InstallFlags(cmd.Flags(), &opts)
	return cmd
}

// InstallFlags adds the build flags to flags. The root command installs
// them too, since running it without a subcommand builds.
func InstallFlags(flags *pflag.FlagSet, opts *Options) {
	flags.StringSliceVarP(&opts.Targets, "target", "t", nil, `Only build targets matching the pattern, e.g. "windows/*" or "!linux/386"`)
	flags.StringVar(&opts.OnFailure, "on-failure", "", `What to do when a target fails to build ("abort", "continue")`)
	flags.BoolVarP(&opts.KeepGoing, "keep-going", "k", false, `Shorthand for --on-failure=continue`)
	flags.BoolVar(&opts.Checksums, "checksums", false, "Write a SHA256SUMS file next to the artifacts")
	flags.StringVar(&opts.Archive, "archive", "", `Also pack each artifact into a tarball ("none", "gzip", "zstd")`)
	flags.StringVar(&opts.Injector, "injector", "", `Icon injector ("auto", "resourcehacker", "winres")`)
	flags.BoolVar(&opts.AllowMissingVersion, "allow-missing-version", false, "Build with an empty version when none is declared")
	flags.BoolVar(&opts.StrictVersion, "strict-version", false, "Fail when the version is not a semantic version")
}

// MarkSet records which optional flags were given explicitly.
func (o *Options) MarkSet(flags *pflag.FlagSet) {
	o.checksumsSet = flags.Changed("checksums")
	o.archiveSet = flags.Changed("archive")
}

// Apply overrides popts with the flags that were set.
func (o *Options) Apply(popts *pipeline.Options) error {
	if o.KeepGoing {
		if o.OnFailure != "" && o.OnFailure != string(orchestrator.Continue) {
			return errdefs.InvalidParameter(errors.New("--keep-going conflicts with --on-failure=" + o.OnFailure))
		}
		o.OnFailure = string(orchestrator.Continue)
	}
	switch orchestrator.FailurePolicy(o.OnFailure) {
	case "":
	case orchestrator.Abort, orchestrator.Continue:
		popts.Policy = orchestrator.FailurePolicy(o.OnFailure)
	default:
		return errdefs.InvalidParameter(errors.Errorf("invalid --on-failure %q: must be abort or continue", o.OnFailure))
	}

	if o.checksumsSet {
		popts.Checksums = o.Checksums
	}
	if o.archiveSet {
		c, _, err := archive.ParseCompression(o.Archive)
		if err != nil {
			return errdefs.InvalidParameter(err)
		}
		popts.Archive = c
	}

	popts.AllowMissingVersion = o.AllowMissingVersion
	popts.StrictVersion = o.StrictVersion

	if len(o.Targets) > 0 {
		targets, err := target.Filter(popts.Targets, o.Targets)
		if err != nil {
			return errdefs.InvalidParameter(err)
		}
		if len(targets) == 0 {
			return errdefs.InvalidParameter(errors.Errorf("no target matches %q", o.Targets))
		}
		popts.Targets = targets
	}
	return nil
}

// RunBuild runs the release pipeline and prints its report.
func RunBuild(ctx context.Context, deployCli command.Cli, opts Options) error {
	popts, err := command.PipelineOptions(deployCli)
	if err != nil {
		return err
	}
	if err := opts.Apply(&popts); err != nil {
		return err
	}

	tc, err := command.NewToolchain(ctx, deployCli, opts.Injector)
	if err != nil {
		return err
	}

	prog := deployCli.Progress()
	popts.OnTarget = func(i, n int, t target.Target) {
		if prog.ProgressIndicatorEnabled {
			prog.Stream(deployCli.Err(), fmt.Sprintf("[%d/%d] %s", i+1, n, t.Platform()))
		}
		prog.StartProgressIndicatorWithLabel(fmt.Sprintf("Building %s (%d/%d)", t.Label, i+1, n), deployCli.Err())
	}
	log.G(ctx).WithField("targets", len(popts.Targets)).Debug("starting release")

	prog.StartProgressIndicatorWithLabel("Preparing workspace", deployCli.Err())
	res, err := pipeline.New(popts, tc).Run(ctx)
	prog.StopProgressIndicator()

	if res != nil {
		printReport(deployCli, res)
	}
	return err
}
