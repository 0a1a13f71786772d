package command

import (
	"io"
	"path/filepath"

	"vecartdeploy/pkg/streams"

	"github.com/moby/term"
)

// CLIOption is a functional argument to apply options to a [DeployCli].
// These options can be passed to [NewDeployCli] to initialize a new CLI,
// or applied with [DeployCli.Initialize] or [DeployCli.Apply].
type CLIOption func(cli *DeployCli) error

// WithStandardStreams sets a cli in, out and err streams with the standard streams.
func WithStandardStreams() CLIOption {
	return func(cli *DeployCli) error {
		// Set terminal emulation based on platform as required.
		stdin, stdout, stderr := term.StdStreams()
		cli.in = streams.NewIn(stdin)
		cli.out = streams.NewOut(stdout)
		cli.err = streams.NewOut(stderr)
		return nil
	}
}

// WithInputStream sets a cli input stream.
func WithInputStream(in io.ReadCloser) CLIOption {
	return func(cli *DeployCli) error {
		cli.in = streams.NewIn(in)
		return nil
	}
}

// WithOutputStream sets a cli output stream.
func WithOutputStream(out io.Writer) CLIOption {
	return func(cli *DeployCli) error {
		cli.out = streams.NewOut(out)
		return nil
	}
}

// WithErrorStream sets a cli error stream.
func WithErrorStream(err io.Writer) CLIOption {
	return func(cli *DeployCli) error {
		cli.err = streams.NewOut(err)
		return nil
	}
}

// WithDir sets the deployment directory without going through flags.
func WithDir(dir string) CLIOption {
	return func(cli *DeployCli) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		cli.dir = abs
		return nil
	}
}
