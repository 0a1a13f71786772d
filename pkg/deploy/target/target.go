// Package target describes the operating system and architecture pairs the
// application is released for, and how their artifacts are named.
package target

import (
	"fmt"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultProduct prefixes every artifact name.
	DefaultProduct = "Vecart"

	windows = "windows"
	exeExt  = ".exe"
)

// Target is a single entry of the release matrix.
type Target struct {
	OS    string `json:"os" validate:"required,goos"`
	Arch  string `json:"arch" validate:"required,goarch"`
	Label string `json:"label,omitempty" validate:"omitempty,label"`
}

// Platform returns the "os/arch" form used by go tooling and by target
// selection patterns.
func (t Target) Platform() string {
	return t.OS + "/" + t.Arch
}

// IsWindows reports whether binaries for t are Windows executables.
func (t Target) IsWindows() bool {
	return t.OS == windows
}

// Ext returns the executable suffix for t.
func (t Target) Ext() string {
	if t.IsWindows() {
		return exeExt
	}
	return ""
}

func (t Target) String() string {
	if t.Label == "" {
		return t.Platform()
	}
	return fmt.Sprintf("%s (%s)", t.Label, t.Platform())
}

// DefaultMatrix returns the release matrix. A new slice is returned on every
// call so callers may filter it freely.
func DefaultMatrix() []Target {
	return []Target{
		{OS: "windows", Arch: "386", Label: "Windows_x86"},
		{OS: "windows", Arch: "amd64", Label: "Windows_x86-64"},
		{OS: "linux", Arch: "386", Label: "Linux_x86"},
		{OS: "linux", Arch: "amd64", Label: "Linux_x86-64"},
	}
}

// ArtifactName returns the file name of the artifact built for t.
// version is used verbatim, including its "v" prefix.
func ArtifactName(product, version string, t Target) string {
	if product == "" {
		product = DefaultProduct
	}
	return fmt.Sprintf("%s_%s_%s%s", product, version, t.Label, t.Ext())
}

// BinaryName returns the file name `go build` produces for t when the
// module's binary is called binary.
func BinaryName(binary string, t Target) string {
	return binary + t.Ext()
}

var archLabels = map[string]string{
	"386":   "x86",
	"amd64": "x86-64",
	"arm":   "ARM",
	"arm64": "ARM64",
}

var osLabels = map[string]string{
	"darwin":  "macOS",
	"freebsd": "FreeBSD",
	"openbsd": "OpenBSD",
	"netbsd":  "NetBSD",
}

// DefaultLabel derives a label for targets that were declared without one,
// e.g. windows/amd64 becomes "Windows_x86-64".
func DefaultLabel(goos, goarch string) string {
	osLabel, ok := osLabels[goos]
	if !ok {
		osLabel = cases.Title(language.English).String(goos)
	}
	archLabel, ok := archLabels[goarch]
	if !ok {
		archLabel = goarch
	}
	return osLabel + "_" + archLabel
}

// Normalize fills in missing labels.
func Normalize(targets []Target) []Target {
	out := make([]Target, len(targets))
	for i, t := range targets {
		if t.Label == "" {
			t.Label = DefaultLabel(t.OS, t.Arch)
		}
		out[i] = t
	}
	return out
}

// CheckUnique returns an error when two targets share a label or a platform,
// since their artifacts would overwrite each other.
func CheckUnique(targets []Target) error {
	labels := make(map[string]Target, len(targets))
	platforms := make(map[string]Target, len(targets))
	for _, t := range targets {
		if prev, ok := labels[t.Label]; ok {
			return errors.Errorf("targets %s and %s share the label %q", prev.Platform(), t.Platform(), t.Label)
		}
		if prev, ok := platforms[t.Platform()]; ok {
			return errors.Errorf("platform %s is listed twice (%q and %q)", t.Platform(), prev.Label, t.Label)
		}
		labels[t.Label] = t
		platforms[t.Platform()] = t
	}
	return nil
}

// Filter keeps the targets whose platform or label matches one of patterns,
// preserving matrix order. An empty pattern list keeps everything. Patterns
// use the same syntax as .dockerignore files, so "windows/*" and "!linux/386"
// both work.
func Filter(targets []Target, patterns []string) ([]Target, error) {
	if len(patterns) == 0 {
		return targets, nil
	}

	var include, exclude []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "!") {
			exclude = append(exclude, strings.TrimPrefix(p, "!"))
			continue
		}
		include = append(include, p)
	}
	if len(include) == 0 {
		include = []string{"*/*"}
	}

	inc, err := patternmatcher.New(include)
	if err != nil {
		return nil, errors.Wrap(err, "invalid target pattern")
	}
	exc, err := patternmatcher.New(exclude)
	if err != nil {
		return nil, errors.Wrap(err, "invalid target pattern")
	}

	var selected []Target
	for _, t := range targets {
		ok, err := matches(inc, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(exclude) > 0 {
			skip, err := matches(exc, t)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}
		}
		selected = append(selected, t)
	}

	if len(selected) == 0 {
		return nil, errors.Errorf("no target matches %s", strings.Join(patterns, ", "))
	}
	return selected, nil
}

func matches(pm *patternmatcher.PatternMatcher, t Target) (bool, error) {
	for _, candidate := range []string{t.Platform(), t.Label} {
		if candidate == "" {
			continue
		}
		ok, err := pm.MatchesOrParentMatches(candidate)
		if err != nil {
			return false, errors.Wrapf(err, "matching %s", candidate)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
