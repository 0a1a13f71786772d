// Package streams wraps the standard streams of the CLI with terminal
// detection.
package streams

type commonStream struct {
	fd         uintptr
	isTerminal bool
}

// FD returns the file descriptor number of the stream.
func (s *commonStream) FD() uintptr {
	return s.fd
}

// IsTerminal reports whether the stream is connected to a terminal.
func (s *commonStream) IsTerminal() bool {
	return s.isTerminal
}
