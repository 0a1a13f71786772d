// Package pipeline runs a complete release: resolve the version, reset the
// workspace and render the icon, build every target, then optionally write
// checksums and archives.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"vecartdeploy/pkg/archive"
	"vecartdeploy/pkg/deploy/icon"
	"vecartdeploy/pkg/deploy/orchestrator"
	"vecartdeploy/pkg/deploy/sumfile"
	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/deploy/toolchain"
	"vecartdeploy/pkg/deploy/version"
	"vecartdeploy/pkg/deploy/workspace"
	"vecartdeploy/pkg/log"

	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
)

// Pipeline stages, as reported in StageError.
const (
	StageVersion  = "version"
	StageIcon     = "icon"
	StageBuild    = "build"
	StageChecksum = "checksum"
	StageArchive  = "archive"
)

// ErrVersionNotFound is returned when the version file has no declaration
// and missing versions are not allowed.
var ErrVersionNotFound = errors.New("no version declaration found")

// StageError tells which stage of the pipeline failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options configures a run. All paths are expected to be absolute or
// relative to the process working directory.
type Options struct {
	DeployDir    string
	SourceDir    string
	VersionFile  string
	Logo         string
	WorkspaceDir string
	IconName     string

	Product string
	Binary  string
	Targets []target.Target
	Policy  orchestrator.FailurePolicy

	// AllowMissingVersion builds with an empty version instead of failing.
	AllowMissingVersion bool
	// StrictVersion fails on versions that are not semantic versions.
	StrictVersion bool

	Checksums bool
	// Archive enables per-artifact tarballs when non-empty.
	Archive archive.Compression

	OnTarget func(i, n int, t target.Target)
}

// DefaultOptions returns the layout of the Vecart repository: the
// deployment directory sits one level below the application sources.
func DefaultOptions(deployDir string) Options {
	sourceDir := filepath.Join(deployDir, "..")
	return Options{
		DeployDir:    deployDir,
		SourceDir:    sourceDir,
		VersionFile:  filepath.Join(sourceDir, "main.go"),
		Logo:         filepath.Join(sourceDir, "images", "logo.png"),
		WorkspaceDir: filepath.Join(deployDir, workspace.DefaultDir),
		IconName:     icon.DefaultName,
		Product:      target.DefaultProduct,
		Binary:       target.DefaultProduct,
		Targets:      target.DefaultMatrix(),
		Policy:       orchestrator.Abort,
	}
}

// Result is what a successful (or partially successful) run produced.
type Result struct {
	Version  version.Version
	// Targets is the matrix the run set out to build.
	Targets  []target.Target
	Icon     string
	Build    *orchestrator.Report
	SumFile  string
	Archives []string
	Duration time.Duration
}

// Pipeline runs releases.
type Pipeline struct {
	opts      Options
	toolchain toolchain.PlatformToolchain
	resolver  *version.Resolver
	icons     *icon.Generator
	workspace *workspace.Workspace
}

// New returns a Pipeline using tc for every external tool.
func New(opts Options, tc toolchain.PlatformToolchain) *Pipeline {
	icons := icon.NewGenerator()
	if opts.IconName != "" {
		icons.Name = opts.IconName
	}
	return &Pipeline{
		opts:      opts,
		toolchain: tc,
		resolver:  version.NewResolver(),
		icons:     icons,
		workspace: workspace.New(opts.WorkspaceDir).Protect(opts.DeployDir, opts.SourceDir),
	}
}

// Workspace returns the staging workspace of the pipeline.
func (p *Pipeline) Workspace() *workspace.Workspace {
	return p.workspace
}

// ResolveVersion reads the version and applies the missing/strict rules.
func (p *Pipeline) ResolveVersion(ctx context.Context) (version.Version, error) {
	v, err := p.resolver.ResolveFile(p.opts.VersionFile)
	if err != nil {
		return v, &StageError{Stage: StageVersion, Err: errdefs.InvalidParameter(err)}
	}

	if !v.IsFound() {
		if !p.opts.AllowMissingVersion {
			err := errors.Wrapf(ErrVersionNotFound, "%s has no %q line", p.opts.VersionFile, version.DefaultMarker)
			return v, &StageError{Stage: StageVersion, Err: errdefs.NotFound(err)}
		}
		log.G(ctx).WithField("file", p.opts.VersionFile).Warn("no version declared, artifact names will carry an empty version")
		return v, nil
	}

	if _, err := v.Semver(); err != nil {
		if p.opts.StrictVersion {
			return v, &StageError{Stage: StageVersion, Err: errdefs.InvalidParameter(err)}
		}
		log.G(ctx).WithError(err).Warn("version is not a semantic version")
	}
	return v, nil
}

// Run executes the whole pipeline. The returned Result is non-nil whenever
// the build stage was reached, so callers can report partial output.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	v, err := p.ResolveVersion(ctx)
	if err != nil {
		return nil, err
	}
	log.G(ctx).WithField("version", v.String()).Info("resolved version")

	iconPath, err := p.icons.Generate(ctx, p.opts.Logo, p.workspace)
	if err != nil {
		return nil, &StageError{Stage: StageIcon, Err: err}
	}

	res := &Result{Version: v, Icon: iconPath, Targets: p.opts.Targets}
	defer func() { res.Duration = time.Since(start) }()

	orch := orchestrator.New(p.toolchain, p.workspace, orchestrator.Options{
		SourceDir: p.opts.SourceDir,
		Binary:    p.opts.Binary,
		Product:   p.opts.Product,
		Icon:      iconPath,
		Policy:    p.opts.Policy,
		OnTarget:  p.opts.OnTarget,
	})
	report, err := orch.Run(ctx, v.String(), p.opts.Targets)
	res.Build = report
	if err != nil {
		if ctx.Err() != nil {
			return res, &StageError{Stage: StageBuild, Err: err}
		}
		return res, &StageError{Stage: StageBuild, Err: errdefs.System(err)}
	}

	paths := make([]string, len(report.Artifacts))
	for i, a := range report.Artifacts {
		paths[i] = a.Path
	}

	if p.opts.Archive != "" {
		for _, path := range paths {
			dst, err := archive.Pack(path, p.opts.Archive)
			if err != nil {
				return res, &StageError{Stage: StageArchive, Err: err}
			}
			res.Archives = append(res.Archives, dst)
		}
	}

	if p.opts.Checksums {
		sums, err := sumfile.Calculate(ctx, append(paths, res.Archives...))
		if err != nil {
			return res, &StageError{Stage: StageChecksum, Err: err}
		}
		if res.SumFile, err = sumfile.Write(p.workspace.Dir(), sums); err != nil {
			return res, &StageError{Stage: StageChecksum, Err: err}
		}
	}

	return res, nil
}
