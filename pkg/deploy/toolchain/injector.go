package toolchain

import (
	"context"
	"path/filepath"

	"vecartdeploy/pkg/log"

	"github.com/pkg/errors"
)

// Injector kinds accepted in configuration.
const (
	InjectorAuto           = "auto"
	InjectorResourceHacker = "resourcehacker"
	InjectorWinres         = "winres"
)

// NewInjector returns the IconInjector for kind. dir is the deployment
// directory, which is searched for the Resource Hacker executable before
// PATH and is used as its working directory.
func NewInjector(ctx context.Context, kind, dir, resourceHacker string) (IconInjector, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s", dir)
		}
		dir = abs
	}
	switch kind {
	case InjectorResourceHacker:
		path, err := findResourceHacker(dir, resourceHacker)
		if err != nil {
			return nil, err
		}
		return &ResourceHacker{Path: path, Dir: dir}, nil
	case InjectorWinres:
		return &Winres{}, nil
	case InjectorAuto, "":
		path, err := findResourceHacker(dir, resourceHacker)
		if err != nil {
			log.G(ctx).Debug("Resource Hacker not found, embedding icons with winres")
			return &Winres{}, nil
		}
		log.G(ctx).WithField("path", path).Debug("embedding icons with Resource Hacker")
		return &ResourceHacker{Path: path, Dir: dir}, nil
	default:
		return nil, errors.Errorf("unknown icon injector %q", kind)
	}
}
