//go:build !windows

package archive

import "os"

// chmodTarEntry is used to adjust the file permissions used in tar header based
// on the platform the archival is done.
func chmodTarEntry(perm os.FileMode) os.FileMode {
	// Remove group- and world-writable bits.
	perm &= ^os.FileMode(0o022)

	return perm
}
