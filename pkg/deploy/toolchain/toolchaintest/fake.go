// Package toolchaintest provides an in-memory PlatformToolchain for tests.
package toolchaintest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vecartdeploy/pkg/deploy/target"
	"vecartdeploy/pkg/deploy/toolchain"
)

// Injection records one InjectIcon call.
type Injection struct {
	Exe  string
	Icon string
}

// Fake compiles by writing a small file named after the binary and records
// every call. Failures are scripted per target label (compile) or per
// artifact base name (inject).
type Fake struct {
	Binary      string
	FailCompile map[string]int
	SkipOutput  map[string]bool
	FailInject  map[string]int

	mu       sync.Mutex
	compiled []target.Target
	injected []Injection
}

var _ toolchain.PlatformToolchain = (*Fake)(nil)

// New returns a Fake producing binary.
func New(binary string) *Fake {
	return &Fake{
		Binary:      binary,
		FailCompile: map[string]int{},
		SkipOutput:  map[string]bool{},
		FailInject:  map[string]int{},
	}
}

// Compile implements toolchain.Compiler.
func (f *Fake) Compile(ctx context.Context, dir string, t target.Target) (*toolchain.Result, error) {
	f.mu.Lock()
	f.compiled = append(f.compiled, t)
	f.mu.Unlock()

	res := &toolchain.Result{Tool: "go build", Args: []string{"build"}, Dir: dir}
	if code := f.FailCompile[t.Label]; code != 0 {
		res.ExitCode = code
		res.Output = []byte(fmt.Sprintf("build failed for %s", t.Platform()))
		return res, nil
	}
	if f.SkipOutput[t.Label] {
		return res, nil
	}

	out := filepath.Join(dir, target.BinaryName(f.Binary, t))
	if err := os.WriteFile(out, []byte(Contents(t)), 0o755); err != nil {
		return nil, err
	}
	return res, nil
}

// InjectIcon implements toolchain.IconInjector.
func (f *Fake) InjectIcon(ctx context.Context, exe, icon string) (*toolchain.Result, error) {
	f.mu.Lock()
	f.injected = append(f.injected, Injection{Exe: exe, Icon: icon})
	f.mu.Unlock()

	res := &toolchain.Result{Tool: "ResourceHacker", Args: []string{exe, icon}}
	if code := f.FailInject[filepath.Base(exe)]; code != 0 {
		res.ExitCode = code
		res.Output = []byte("resource update failed")
	}
	return res, nil
}

// Compiled returns the targets Compile was called with, in order.
func (f *Fake) Compiled() []target.Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]target.Target(nil), f.compiled...)
}

// Injected returns the InjectIcon calls, in order.
func (f *Fake) Injected() []Injection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Injection(nil), f.injected...)
}

// Contents is what the fake writes as the binary for t.
func Contents(t target.Target) string {
	return "binary " + t.Platform()
}
