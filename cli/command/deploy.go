package command

import (
	"context"

	"vecartdeploy/pkg/archive"
	"vecartdeploy/pkg/config/configfile"
	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/pipeline"
	"vecartdeploy/pkg/deploy/toolchain"
	"vecartdeploy/pkg/deploy/workspace"

	"github.com/docker/docker/errdefs"
)

// PipelineOptions resolves the loaded configuration against the
// deployment directory.
func PipelineOptions(deployCli Cli) (pipeline.Options, error) {
	cfg := deployCli.ConfigFile()
	dir := deployCli.Dir()

	opts := pipeline.DefaultOptions(dir)
	opts.SourceDir = configfile.Resolve(dir, cfg.SourceDir)
	opts.VersionFile = configfile.Resolve(opts.SourceDir, cfg.VersionFile)
	opts.Logo = configfile.Resolve(opts.SourceDir, cfg.Logo)
	opts.WorkspaceDir = configfile.Resolve(dir, cfg.Workspace)
	opts.IconName = cfg.Icon
	opts.Product = cfg.Product
	opts.Binary = cfg.Binary
	opts.Targets = cfg.Targets
	opts.Policy = orchestrator.FailurePolicy(cfg.OnFailure)
	opts.Checksums = cfg.Checksums

	if err := Workspace(opts).Check(); err != nil {
		return opts, errdefs.InvalidParameter(err)
	}

	c, ok, err := archive.ParseCompression(cfg.Archive)
	if err != nil {
		return opts, errdefs.InvalidParameter(err)
	}
	if ok {
		opts.Archive = c
	}
	return opts, nil
}

// Workspace returns the workspace of opts, guarded against removing the
// deployment or source directory.
func Workspace(opts pipeline.Options) *workspace.Workspace {
	return workspace.New(opts.WorkspaceDir).Protect(opts.DeployDir, opts.SourceDir)
}

// NewToolchain returns the toolchain of the host for the given injector
// kind. An empty kind uses the configured one.
func NewToolchain(ctx context.Context, deployCli Cli, injectorKind string) (*toolchain.Toolchain, error) {
	cfg := deployCli.ConfigFile()
	if injectorKind == "" {
		injectorKind = cfg.Injector
	}
	injector, err := toolchain.NewInjector(ctx, injectorKind, deployCli.Dir(), cfg.ResourceHacker)
	if err != nil {
		return nil, errdefs.InvalidParameter(err)
	}
	return toolchain.New(toolchain.NewGoCompiler(), injector), nil
}
