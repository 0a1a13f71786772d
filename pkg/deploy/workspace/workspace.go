// Package workspace manages the staging directory that collects the icon
// asset and the build artifacts of one release run.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vecartdeploy/pkg/log"

	"github.com/fvbommel/sortorder"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
)

// DefaultDir is the workspace directory relative to the deployment directory.
const DefaultDir = "tmp"

const dirPerm = 0o755

// ErrProtected is returned when the workspace would remove a protected
// directory.
var ErrProtected = errors.New("workspace overlaps a protected directory")

// Workspace is a staging directory.
type Workspace struct {
	dir       string
	protected []string
}

// New returns a Workspace rooted at dir. Nothing is created on disk until
// Reset is called.
func New(dir string) *Workspace {
	return &Workspace{dir: dir}
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Protect makes Reset and Remove refuse to run when the workspace is one of
// roots or contains one of them. Empty roots are ignored.
func (w *Workspace) Protect(roots ...string) *Workspace {
	for _, r := range roots {
		if r != "" {
			w.protected = append(w.protected, r)
		}
	}
	return w
}

// Check returns ErrProtected if removing the workspace would remove a
// protected directory.
func (w *Workspace) Check() error {
	dir, err := filepath.Abs(w.dir)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve workspace %s", w.dir)
	}
	for _, root := range w.protected {
		abs, err := filepath.Abs(root)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", root)
		}
		if contains(dir, abs) {
			return errors.Wrapf(ErrProtected, "workspace %s would remove %s", dir, abs)
		}
	}
	return nil
}

// contains reports whether root is dir or lies below it. Both paths must
// be absolute.
func contains(dir, root string) bool {
	rel, err := filepath.Rel(dir, root)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Path returns the path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Reset leaves the workspace existing and empty. An existing directory is
// removed recursively first, clearing restrictive permissions on the way.
func (w *Workspace) Reset(ctx context.Context) error {
	if err := w.Check(); err != nil {
		return err
	}
	fi, err := os.Lstat(w.dir)
	switch {
	case os.IsNotExist(err):
		log.G(ctx).WithField("dir", w.dir).Debug("creating workspace")
	case err != nil:
		return errors.Wrapf(err, "failed to stat workspace %s", w.dir)
	case !fi.IsDir():
		return errors.Errorf("workspace %s exists and is not a directory", w.dir)
	default:
		log.G(ctx).WithField("dir", w.dir).Debug("clearing stale workspace")
		if err := ForceRemoveAll(ctx, w.dir); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return errors.Wrapf(err, "failed to create workspace %s", w.dir)
	}
	return nil
}

// Remove deletes the workspace entirely.
func (w *Workspace) Remove(ctx context.Context) error {
	if err := w.Check(); err != nil {
		return err
	}
	if _, err := os.Lstat(w.dir); os.IsNotExist(err) {
		return nil
	}
	return ForceRemoveAll(ctx, w.dir)
}

// Place copies src into the workspace as name and then deletes src. It
// returns the destination path.
func (w *Workspace) Place(src, name string) (string, error) {
	dst := w.Path(name)

	fi, err := os.Stat(src)
	if err != nil {
		return "", errors.Wrap(err, "build output missing")
	}
	if fi.IsDir() {
		return "", errors.Errorf("build output %s is a directory", src)
	}

	if err := copy.Copy(src, dst, copy.Options{Sync: true}); err != nil {
		return "", errors.Wrapf(err, "failed to copy %s to %s", src, dst)
	}
	if err := os.Remove(src); err != nil {
		return "", errors.Wrapf(err, "failed to remove %s", src)
	}
	return dst, nil
}

// Entry is a file in the workspace.
type Entry struct {
	Name string
	Size int64
	Mode fs.FileMode
}

// Entries lists the regular files in the workspace in natural order.
func (w *Workspace) Entries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read workspace %s", w.dir)
	}

	names := make([]string, 0, len(dirEntries))
	infos := make(map[string]fs.FileInfo, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			return nil, err
		}
		names = append(names, de.Name())
		infos[de.Name()] = fi
	}
	sort.Sort(sortorder.Natural(names))

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		fi := infos[name]
		entries = append(entries, Entry{Name: name, Size: fi.Size(), Mode: fi.Mode()})
	}
	return entries, nil
}
