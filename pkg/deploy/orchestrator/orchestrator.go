// Package orchestrator runs the per-target build loop: compile, move the
// binary into the workspace under its release name and, for Windows, embed
// the icon.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/deploy/toolchain"
	"vecartdeploy/pkg/deploy/workspace"
	"vecartdeploy/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FailurePolicy decides what happens to the remaining targets once one of
// them failed to compile.
type FailurePolicy string

const (
	// Abort stops the loop at the first failed target.
	Abort FailurePolicy = "abort"
	// Continue skips the failed target and builds the rest.
	Continue FailurePolicy = "continue"
)

// Stages of a single target.
const (
	StageCompile  = "compile"
	StageRelocate = "relocate"
	StageInject   = "inject"
)

// Artifact is a finished binary in the workspace.
type Artifact struct {
	Target target.Target
	Name   string
	Path   string
	Size   int64
}

// TargetError is the failure of one target at one stage.
type TargetError struct {
	Target target.Target
	Stage  string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Target.Label, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// Report summarises a build loop.
type Report struct {
	Artifacts []Artifact
	Failures  []*TargetError
	Duration  time.Duration
}

// Options configures an Orchestrator.
type Options struct {
	// SourceDir is where `go build` runs and leaves its output.
	SourceDir string
	// Binary is the name of the compiler's output without extension.
	Binary string
	// Product prefixes artifact names.
	Product string
	// Icon is embedded into Windows artifacts.
	Icon string
	// Policy applies to compile and relocate failures. Icon injection
	// failures always end the run.
	Policy FailurePolicy
	// OnTarget is called before each target is built.
	OnTarget func(i, n int, t target.Target)
}

// Orchestrator builds the release matrix.
type Orchestrator struct {
	toolchain toolchain.PlatformToolchain
	workspace *workspace.Workspace
	opts      Options
}

// New returns an Orchestrator.
func New(tc toolchain.PlatformToolchain, ws *workspace.Workspace, opts Options) *Orchestrator {
	if opts.Product == "" {
		opts.Product = target.DefaultProduct
	}
	if opts.Binary == "" {
		opts.Binary = opts.Product
	}
	if opts.Policy == "" {
		opts.Policy = Abort
	}
	return &Orchestrator{toolchain: tc, workspace: ws, opts: opts}
}

// Run builds targets in order for version. The workspace must already have
// been reset and hold the icon.
//
// The returned Report is never nil. The error is the first TargetError when
// the policy is Abort or the failure came from icon injection; otherwise it
// lists every failed target.
func (o *Orchestrator) Run(ctx context.Context, version string, targets []target.Target) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() { report.Duration = time.Since(start) }()

	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if o.opts.OnTarget != nil {
			o.opts.OnTarget(i, len(targets), t)
		}

		tctx := log.WithFields(ctx, logrus.Fields{"target": t.Label, "platform": t.Platform()})
		artifact, err := o.build(tctx, version, t)
		if err != nil {
			var terr *TargetError
			if !errors.As(err, &terr) {
				return report, err
			}
			report.Failures = append(report.Failures, terr)
			if o.opts.Policy == Abort || terr.Stage == StageInject {
				return report, terr
			}
			log.G(tctx).WithError(terr.Err).Warnf("%s failed, continuing with remaining targets", terr.Stage)
			continue
		}
		report.Artifacts = append(report.Artifacts, *artifact)
	}

	if len(report.Failures) > 0 {
		return report, &MultiError{Failures: report.Failures}
	}
	return report, nil
}

func (o *Orchestrator) build(ctx context.Context, version string, t target.Target) (*Artifact, error) {
	output := filepath.Join(o.opts.SourceDir, target.BinaryName(o.opts.Binary, t))

	// A binary left behind by an earlier build must never be shipped as
	// this target's output.
	if err := os.Remove(output); err == nil {
		log.G(ctx).WithField("path", output).Debug("removed stale build output")
	} else if !os.IsNotExist(err) {
		return nil, &TargetError{Target: t, Stage: StageCompile, Err: errors.Wrap(err, "failed to remove stale build output")}
	}

	log.G(ctx).Info("compiling")
	res, err := o.toolchain.Compile(ctx, o.opts.SourceDir, t)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &TargetError{Target: t, Stage: StageCompile, Err: err}
	}
	if err := res.Err(); err != nil {
		return nil, &TargetError{Target: t, Stage: StageCompile, Err: err}
	}

	name := target.ArtifactName(o.opts.Product, version, t)
	path, err := o.workspace.Place(output, name)
	if err != nil {
		return nil, &TargetError{Target: t, Stage: StageRelocate, Err: err}
	}

	if t.IsWindows() {
		log.G(ctx).WithField("artifact", name).Debug("embedding icon")
		res, err := o.toolchain.InjectIcon(ctx, path, o.opts.Icon)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, &TargetError{Target: t, Stage: StageInject, Err: err}
		}
		if err := res.Err(); err != nil {
			return nil, &TargetError{Target: t, Stage: StageInject, Err: err}
		}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, &TargetError{Target: t, Stage: StageRelocate, Err: err}
	}

	log.G(ctx).WithField("artifact", name).Info("built")
	return &Artifact{Target: t, Name: name, Path: path, Size: fi.Size()}, nil
}

// MultiError collects the targets skipped under the Continue policy.
type MultiError struct {
	Failures []*TargetError
}

func (e *MultiError) Error() string {
	if len(e.Failures) == 1 {
		return e.Failures[0].Error()
	}
	msg := fmt.Sprintf("%d targets failed:", len(e.Failures))
	for _, f := range e.Failures {
		msg += "\n  - " + f.Error()
	}
	return msg
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *MultiError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
