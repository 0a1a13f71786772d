package toolchain

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultResourceHacker is the executable name of Resource Hacker.
const DefaultResourceHacker = "ResourceHacker.exe"

// ResourceHacker injects icons with the external Resource Hacker tool.
type ResourceHacker struct {
	// Path is the resolved executable.
	Path string
	// Dir is the working directory of the tool.
	Dir string
}

// InjectIcon replaces the main icon group of exe with icon, saving over exe.
// An existing MAINICON is left as is.
//
// Paths are made absolute first, since the tool runs in Dir.
func (r *ResourceHacker) InjectIcon(ctx context.Context, exe, icon string) (*Result, error) {
	var paths [3]string
	for i, p := range []string{r.Path, exe, icon} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		paths[i] = abs
	}
	return run(ctx, invocation{
		tool: "ResourceHacker",
		path: paths[0],
		args: resourceHackerArgs(paths[1], paths[2]),
		dir:  r.Dir,
		env:  os.Environ(),
	})
}

func resourceHackerArgs(exe, icon string) []string {
	return []string{
		"-open", exe,
		"-save", exe,
		"-action", "addskip",
		"-res", icon,
		"-mask", "ICONGROUP,MAINICON",
	}
}

// findResourceHacker looks for name in dir first, then on PATH.
func findResourceHacker(dir, name string) (string, error) {
	if name == "" {
		name = DefaultResourceHacker
	}
	if !filepath.IsAbs(name) && dir != "" {
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return lookPath(name)
}
