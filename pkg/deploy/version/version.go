// Package version reads the application version from the `const Version`
// declaration in its source tree.
package version

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

const (
	// DefaultMarker identifies the line holding the version constant.
	DefaultMarker = "const Version"
	// DefaultQuote delimits the version literal.
	DefaultQuote = `"`

	prefix = "v"
)

// Version is the result of a lookup. The zero value is "not found".
type Version struct {
	literal string
	found   bool
}

// Found returns a found version for literal ("1.4.2", without prefix).
func Found(literal string) Version {
	return Version{literal: literal, found: true}
}

// NotFound returns the not-found variant.
func NotFound() Version {
	return Version{}
}

// IsFound reports whether a version declaration was present.
func (v Version) IsFound() bool {
	return v.found
}

// Literal returns the declared value without the "v" prefix.
func (v Version) Literal() string {
	return v.literal
}

// String returns the tag used in artifact names, e.g. "v1.4.2", or "" when
// no version was found.
func (v Version) String() string {
	if !v.found {
		return ""
	}
	return prefix + v.literal
}

// Semver parses the literal. Two-component versions such as "1.0" are
// accepted and padded.
func (v Version) Semver() (*semver.Version, error) {
	if !v.found {
		return nil, errors.New("no version declared")
	}
	sv, err := semver.NewVersion(v.literal)
	if err != nil {
		return nil, errors.Wrapf(err, "%q is not a semantic version", v.literal)
	}
	return sv, nil
}

// Resolver scans source files for the version declaration.
type Resolver struct {
	Marker string
	Quote  string
}

// NewResolver returns a Resolver for `const Version = "x.y.z"`.
func NewResolver() *Resolver {
	return &Resolver{Marker: DefaultMarker, Quote: DefaultQuote}
}

// ResolveFile resolves the version declared in the file at path.
func (r *Resolver) ResolveFile(path string) (Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return NotFound(), errors.Wrap(err, "failed to open version file")
	}
	defer f.Close()

	v, err := r.Resolve(f)
	if err != nil {
		return NotFound(), errors.Wrapf(err, "failed to read version from %s", path)
	}
	return v, nil
}

// Resolve scans rd line by line. The first line containing the marker wins;
// its value is the text between the last two quotes on that line.
func (r *Resolver) Resolve(rd io.Reader) (Version, error) {
	marker, quote := r.Marker, r.Quote
	if marker == "" {
		marker = DefaultMarker
	}
	if quote == "" {
		quote = DefaultQuote
	}

	scanner := bufio.NewScanner(rd)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.Contains(line, marker) {
			continue
		}

		parts := strings.Split(line, quote)
		if len(parts) < 3 {
			return NotFound(), errors.Errorf("line %d declares %q without a quoted value", lineNo, marker)
		}
		return Found(parts[len(parts)-2]), nil
	}
	if err := scanner.Err(); err != nil {
		return NotFound(), err
	}

	return NotFound(), nil
}
