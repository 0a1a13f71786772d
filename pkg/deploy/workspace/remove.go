package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"vecartdeploy/pkg/log"

	"github.com/pkg/errors"
)

const widePerm = 0o700

// CleanupError is returned when the workspace could not be cleared.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("failed to clear %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// ForceRemoveAll removes path and everything below it. An operation denied
// for lack of permission is retried exactly once after the permissions of
// the entry, and of its parent when that parent lies inside path, have been
// widened. Nothing outside path is ever modified. Any other failure is
// returned as a *CleanupError.
func ForceRemoveAll(ctx context.Context, path string) error {
	return removeAll(ctx, path, path)
}

func removeAll(ctx context.Context, root, path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &CleanupError{Path: path, Err: err}
	}

	if fi.IsDir() {
		var entries []os.DirEntry
		err := retryOnPermission(ctx, root, path, func() (err error) {
			entries, err = os.ReadDir(path)
			return err
		})
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := removeAll(ctx, root, filepath.Join(path, e.Name())); err != nil {
				return err
			}
		}
	}

	return retryOnPermission(ctx, root, path, func() error {
		err := os.Remove(path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}

func retryOnPermission(ctx context.Context, root, path string, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return &CleanupError{Path: path, Err: err}
	}

	log.G(ctx).WithError(err).WithField("path", path).Debug("access denied, widening permissions and retrying")
	widen(root, path)

	if err := op(); err != nil {
		return &CleanupError{Path: path, Err: err}
	}
	return nil
}

// widen clears restrictive permissions on path and, unless path is root,
// on its parent. On Windows this also drops the read-only attribute.
func widen(root, path string) {
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink == 0 {
		_ = os.Chmod(path, widePerm)
	}
	if filepath.Clean(path) != filepath.Clean(root) {
		_ = os.Chmod(filepath.Dir(path), widePerm)
	}
}
