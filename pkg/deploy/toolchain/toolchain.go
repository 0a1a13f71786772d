// Package toolchain wraps the external programs the release pipeline drives:
// the Go compiler and the resource editor that embeds the icon into Windows
// executables.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Compiler builds the application for one target.
type Compiler interface {
	Compile(ctx context.Context, dir string, t target.Target) (*Result, error)
}

// IconInjector embeds an icon into a compiled Windows executable, in place.
type IconInjector interface {
	InjectIcon(ctx context.Context, exe, icon string) (*Result, error)
}

// PlatformToolchain is everything the build loop needs from the outside
// world.
type PlatformToolchain interface {
	Compiler
	IconInjector
}

// Toolchain pairs a Compiler with an IconInjector.
type Toolchain struct {
	Compiler
	IconInjector
}

// New returns a Toolchain.
func New(c Compiler, i IconInjector) *Toolchain {
	return &Toolchain{Compiler: c, IconInjector: i}
}

// Result describes one finished tool invocation. A non-nil error returned
// next to a Result means the tool could not be run at all; a non-zero
// ExitCode means it ran and failed.
type Result struct {
	Tool     string
	Args     []string
	Dir      string
	ExitCode int
	Output   []byte
	Duration time.Duration
}

// Success reports whether the tool exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Err returns a *ToolError for a failed invocation, or nil.
func (r *Result) Err() error {
	if r.Success() {
		return nil
	}
	return &ToolError{
		Tool:     r.Tool,
		Args:     r.Args,
		ExitCode: r.ExitCode,
		Output:   r.Output,
	}
}

// ToolError is a non-zero exit of an external tool.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   []byte
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += ": " + tail(out, 20)
	}
	return msg
}

// tail keeps the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return "...\n" + strings.Join(lines[len(lines)-n:], "\n")
}

type invocation struct {
	tool string
	path string
	args []string
	dir  string
	env  []string
}

// run executes inv, capturing combined output. Only failures to start the
// process or a cancelled context are returned as errors.
func run(ctx context.Context, inv invocation) (*Result, error) {
	cmd := exec.CommandContext(ctx, inv.path, inv.args...)
	cmd.Dir = inv.dir
	cmd.Env = inv.env

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	l := log.G(ctx).WithFields(logrus.Fields{
		"tool": inv.tool,
		"args": strings.Join(inv.args, " "),
		"dir":  inv.dir,
	})
	l.Debug("running")

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Tool:     inv.tool,
		Args:     inv.args,
		Dir:      inv.dir,
		Output:   out.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "%s interrupted", inv.tool)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, errors.Wrapf(err, "failed to run %s", inv.tool)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	if len(res.Output) > 0 {
		l.Debugf("output:\n%s", res.Output)
	}
	l.WithField("exit", res.ExitCode).WithField("took", res.Duration.Round(time.Millisecond)).Debug("finished")

	return res, nil
}
