package archive

import "os"

// chmodTarEntry is used to adjust the file permissions used in tar header based
// on the platform the archival is done.
func chmodTarEntry(perm os.FileMode) os.FileMode {
	// Windows has no execute bit; artifacts are made executable for the
	// hosts that unpack them.
	perm &= 0o755
	perm |= 0o111

	return perm
}
