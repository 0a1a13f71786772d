package toolchain

import (
	"context"
	"os"
	"strings"

	"vecartdeploy/pkg/deploy/target"

	"github.com/cli/safeexec"
	"github.com/pkg/errors"
)

// GoCompiler runs `go build` in the application's source directory.
type GoCompiler struct {
	// GoBinary is the go command, looked up on PATH unless it contains a
	// path separator. Defaults to "go".
	GoBinary string
	// BuildFlags are appended after "build". Empty by default.
	BuildFlags []string
	// BaseEnv provides the environment the target settings are layered
	// onto. Defaults to os.Environ.
	BaseEnv func() []string
}

// NewGoCompiler returns a GoCompiler using the go binary on PATH.
func NewGoCompiler() *GoCompiler {
	return &GoCompiler{GoBinary: "go", BaseEnv: os.Environ}
}

// Compile builds dir for t. GOOS and GOARCH are passed in the child's own
// environment; the environment of this process is left untouched.
func (c *GoCompiler) Compile(ctx context.Context, dir string, t target.Target) (*Result, error) {
	goBin := c.GoBinary
	if goBin == "" {
		goBin = "go"
	}
	path, err := lookPath(goBin)
	if err != nil {
		return nil, err
	}

	base := os.Environ
	if c.BaseEnv != nil {
		base = c.BaseEnv
	}

	return run(ctx, invocation{
		tool: "go build",
		path: path,
		args: append([]string{"build"}, c.BuildFlags...),
		dir:  dir,
		env:  TargetEnv(base(), t),
	})
}

// TargetEnv returns a copy of base with GOOS and GOARCH set for t.
func TargetEnv(base []string, t target.Target) []string {
	env := make([]string, 0, len(base)+2)
	for _, kv := range base {
		if strings.HasPrefix(kv, "GOOS=") || strings.HasPrefix(kv, "GOARCH=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "GOOS="+t.OS, "GOARCH="+t.Arch)
}

func lookPath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		if _, err := os.Stat(name); err != nil {
			return "", errors.Wrapf(err, "%s not found", name)
		}
		return name, nil
	}
	path, err := safeexec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, "%s not found in PATH", name)
	}
	return path, nil
}
