// Package archive packs release artifacts into compressed tarballs.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/moby/sys/sequential"
	"github.com/pkg/errors"
)

// Compression is the algorithm applied on top of the tar stream.
type Compression string

const (
	Uncompressed Compression = "none"
	Gzip         Compression = "gzip"
	Zstd         Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1F, 0x8B, 0x08}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// ParseCompression maps a configuration value to a Compression. The empty
// string means no archives are produced and is reported as ok=false.
func ParseCompression(s string) (c Compression, ok bool, err error) {
	switch strings.ToLower(s) {
	case "", "off":
		return "", false, nil
	case "none", "tar":
		return Uncompressed, true, nil
	case "gzip", "gz":
		return Gzip, true, nil
	case "zstd", "zst":
		return Zstd, true, nil
	default:
		return "", false, errors.Errorf("unsupported archive compression %q", s)
	}
}

// Extension returns the file name suffix for archives using c.
func (c Compression) Extension() string {
	switch c {
	case Gzip:
		return ".tar.gz"
	case Zstd:
		return ".tar.zst"
	default:
		return ".tar"
	}
}

// FileInfoHeader creates a populated Header from fi.
func FileInfoHeader(name string, fi os.FileInfo, link string) (*tar.Header, error) {
	hdr, err := tar.FileInfoHeader(fi, link)
	if err != nil {
		return nil, err
	}
	hdr.Format = tar.FormatPAX
	hdr.ModTime = hdr.ModTime.Truncate(time.Second)
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	hdr.Mode = int64(chmodTarEntry(os.FileMode(hdr.Mode)))
	hdr.Name = canonicalTarName(name, fi.IsDir())
	return hdr, nil
}

// canonicalTarName provides a platform-independent and consistent POSIX-style
// path for files and directories to be archived regardless of the platform.
func canonicalTarName(name string, isDir bool) string {
	name = filepath.ToSlash(name)

	// suffix with '/' for directories
	if isDir && !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return name
}

// Pack writes src as the single entry of a tarball next to it and returns
// the tarball's path. Windows artifacts keep an executable mode so that the
// archive unpacks the same way on every host.
func Pack(src string, c Compression) (string, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if !fi.Mode().IsRegular() {
		return "", errors.Errorf("%s is not a regular file", src)
	}

	dst := src + c.Extension()
	out, err := sequential.Create(dst)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dst)
	}

	if err := writeTarball(out, src, fi, c); err != nil {
		out.Close()
		os.Remove(dst)
		return "", errors.Wrapf(err, "failed to pack %s", src)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func writeTarball(w io.Writer, src string, fi os.FileInfo, c Compression) error {
	bw := bufio.NewWriterSize(w, 32*1024)

	cw, err := compressWriter(bw, c)
	if err != nil {
		return err
	}

	hdr, err := FileInfoHeader(filepath.Base(src), fi, "")
	if err != nil {
		return err
	}
	if strings.HasSuffix(strings.ToLower(src), ".exe") {
		hdr.Mode |= 0o111
	}

	tw := tar.NewWriter(cw)
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	// Sequential access avoids depleting the standby list on Windows. On
	// Linux this is a regular os.Open.
	file, err := sequential.Open(src)
	if err != nil {
		return err
	}
	_, err = copyWithBuffer(tw, file)
	file.Close()
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case Uncompressed, "":
		return nopWriteCloser{w}, nil
	default:
		return nil, errors.Errorf("unsupported compression %q", c)
	}
}

type readCloserWrapper struct {
	io.Reader
	closer func() error
}

func (r *readCloserWrapper) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}

// DecompressStream detects gzip or zstd compression by its magic bytes and
// returns the decompressed stream. Anything else is passed through.
func DecompressStream(archive io.Reader) (io.ReadCloser, error) {
	buf := bufio.NewReaderSize(archive, 32*1024)
	bs, err := buf.Peek(4)
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(bs, gzipMagic):
		return gzip.NewReader(buf)
	case bytes.HasPrefix(bs, zstdMagic):
		zr, err := zstd.NewReader(buf)
		if err != nil {
			return nil, err
		}
		return &readCloserWrapper{Reader: zr, closer: func() error { zr.Close(); return nil }}, nil
	default:
		return io.NopCloser(buf), nil
	}
}
