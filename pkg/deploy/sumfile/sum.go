// Package sumfile writes the SHA256SUMS file published next to the release
// artifacts.
package sumfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SumFile is the name of the checksum file inside the workspace.
const SumFile = "SHA256SUMS"

// Sum is one line of the checksum file.
type Sum struct {
	Name   string
	Digest digest.Digest
}

// Calculate digests every file in paths concurrently. The result is sorted
// by file name.
func Calculate(ctx context.Context, paths []string) ([]Sum, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var (
		mu   sync.Mutex
		sums = make([]Sum, 0, len(paths))
	)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := digestFile(p)
			if err != nil {
				return err
			}
			mu.Lock()
			sums = append(sums, Sum{Name: filepath.Base(p), Digest: d})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(sums, func(i, j int) bool { return sums[i].Name < sums[j].Name })
	return sums, nil
}

func digestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", errors.Wrapf(err, "failed to hash %s", path)
	}
	return d, nil
}

// Write stores sums in dir/SHA256SUMS using the `sha256sum` text format and
// returns the file path.
func Write(dir string, sums []Sum) (string, error) {
	var b strings.Builder
	for _, s := range sums {
		fmt.Fprintf(&b, "%s  %s\n", s.Digest.Encoded(), s.Name)
	}
	path := filepath.Join(dir, SumFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// Read parses a checksum file written by Write. Malformed lines are ignored.
func Read(path string) ([]Sum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var sums []Sum
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) != 2 {
			continue
		}
		d := digest.NewDigestFromEncoded(digest.SHA256, parts[0])
		if d.Validate() != nil {
			continue
		}
		sums = append(sums, Sum{Name: parts[1], Digest: d})
	}
	return sums, scanner.Err()
}

// Verify recomputes the digest of every file listed in sums relative to dir.
func Verify(ctx context.Context, dir string, sums []Sum) error {
	paths := make([]string, len(sums))
	want := make(map[string]digest.Digest, len(sums))
	for i, s := range sums {
		paths[i] = filepath.Join(dir, s.Name)
		want[s.Name] = s.Digest
	}

	got, err := Calculate(ctx, paths)
	if err != nil {
		return err
	}
	for _, s := range got {
		if s.Digest != want[s.Name] {
			return errors.Errorf("checksum mismatch for %s", s.Name)
		}
	}
	return nil
}
