package toolchain

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"vecartdeploy/pkg/log"

	"github.com/pkg/errors"
	"github.com/tc-hib/winres"
)

var mainIcon = winres.Name("MAINICON")

// Winres injects icons by rewriting the executable's resource section in
// process, for hosts where Resource Hacker is unavailable.
type Winres struct{}

// InjectIcon adds icon as the MAINICON group of exe, unless exe already has
// one. The file is rewritten through a temporary file in the same directory
// and renamed over exe; no backup is kept.
//
// Problems with exe itself are reported as a failed Result, like a non-zero
// exit of an external tool would be.
func (w *Winres) InjectIcon(ctx context.Context, exe, icon string) (*Result, error) {
	start := time.Now()
	res := &Result{Tool: "winres", Args: []string{exe, icon}, Dir: filepath.Dir(exe)}
	fail := func(err error) (*Result, error) {
		res.ExitCode = 1
		res.Output = []byte(err.Error())
		res.Duration = time.Since(start)
		return res, nil
	}

	ico, err := loadICO(icon)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(exe)
	if err != nil {
		return nil, errors.Wrap(err, "executable missing")
	}
	data, err := os.ReadFile(exe)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", exe)
	}

	rs, err := winres.LoadFromEXE(bytes.NewReader(data))
	if err != nil {
		// Go binaries carry no resource section unless a .syso was linked in.
		log.G(ctx).WithError(err).Debug("starting from an empty resource set")
		rs = &winres.ResourceSet{}
	}

	if _, err := rs.GetIcon(mainIcon); err == nil {
		res.Output = []byte("MAINICON already present, skipped")
		res.Duration = time.Since(start)
		return res, nil
	}

	if err := rs.SetIcon(mainIcon, ico); err != nil {
		return fail(errors.Wrap(err, "failed to set icon"))
	}

	tmp, err := os.CreateTemp(filepath.Dir(exe), "."+filepath.Base(exe)+".*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temporary executable")
	}
	defer os.Remove(tmp.Name())

	if err := rs.WriteToEXE(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fail(errors.Wrapf(err, "failed to rewrite %s", exe))
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), exe); err != nil {
		return nil, errors.Wrapf(err, "failed to replace %s", exe)
	}

	res.Duration = time.Since(start)
	return res, nil
}

func loadICO(path string) (*winres.Icon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open icon")
	}
	defer f.Close()

	ico, err := winres.LoadICO(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load icon %s", path)
	}
	return ico, nil
}
