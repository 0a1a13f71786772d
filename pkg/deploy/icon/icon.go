// Package icon renders the application logo into the Windows icon that is
// embedded into every Windows artifact.
package icon

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // logo decoders
	_ "image/jpeg" // logo decoders
	_ "image/png"  // logo decoders
	"os"

	"vecartdeploy/pkg/deploy/workspace"
	"vecartdeploy/pkg/log"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tc-hib/winres"
)

const (
	// DefaultName is the icon file name inside the workspace.
	DefaultName = "icon.ico"
	// DefaultSize is the edge length of the generated icon in pixels.
	DefaultSize = 256
)

// Generator produces the icon asset.
type Generator struct {
	Name   string
	Size   uint
	Filter resize.InterpolationFunction
}

// NewGenerator returns a Generator producing a 256×256 icon.ico resampled
// with Lanczos3.
func NewGenerator() *Generator {
	return &Generator{
		Name:   DefaultName,
		Size:   DefaultSize,
		Filter: resize.Lanczos3,
	}
}

// Generate resets ws and writes the icon rendered from the logo at logoPath
// into it. It returns the path of the icon.
//
// This is the only place the workspace is initialised; everything written
// later in a run assumes Generate has succeeded.
func (g *Generator) Generate(ctx context.Context, logoPath string, ws *workspace.Workspace) (string, error) {
	if err := ws.Reset(ctx); err != nil {
		return "", err
	}

	logo, err := decode(logoPath)
	if err != nil {
		return "", err
	}

	img := g.Resize(logo)
	ico, err := winres.NewIconFromImages([]image.Image{img})
	if err != nil {
		return "", errors.Wrap(err, "failed to build icon")
	}

	path := ws.Path(g.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create icon file")
	}
	if err := ico.SaveICO(f); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}

	b := logo.Bounds()
	log.G(ctx).WithFields(logrus.Fields{
		"logo":   logoPath,
		"source": fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"icon":   path,
	}).Debug("icon generated")

	return path, nil
}

// Resize scales img to exactly Size×Size, ignoring its aspect ratio.
func (g *Generator) Resize(img image.Image) image.Image {
	size := g.Size
	if size == 0 {
		size = DefaultSize
	}
	return resize.Resize(size, size, img, g.Filter)
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open logo")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode logo %s", path)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, errors.Errorf("logo %s (%s) has no pixels", path, format)
	}
	return img, nil
}
