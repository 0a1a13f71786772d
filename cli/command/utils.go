package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"vecartdeploy/pkg/streams"

	"github.com/docker/docker/errdefs"
	"github.com/pkg/errors"
)

var ErrPromptTerminated = errdefs.Cancelled(errors.New("prompt terminated"))

// PromptForConfirmation displays message followed by ' [y/N] ' and
// reports whether the user answered 'y' or 'Y'.
//
// If ctx is cancelled while the prompt is active, it returns false with
// ErrPromptTerminated. The caller should then close the reader so the
// background goroutine does not block forever.
func PromptForConfirmation(ctx context.Context, ins io.Reader, outs io.Writer, message string) (bool, error) {
	if message == "" {
		message = "Are you sure you want to proceed?"
	}
	message += " [y/N] "

	_, _ = fmt.Fprint(outs, message)

	// On Windows, force the use of the regular OS stdin stream.
	if runtime.GOOS == "windows" {
		ins = streams.NewIn(os.Stdin)
	}

	result := make(chan bool, 1)
	go func() {
		var res bool
		scanner := bufio.NewScanner(ins)
		if scanner.Scan() {
			res = strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
		}
		result <- res
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(outs, "")
		return false, ErrPromptTerminated
	case r := <-result:
		return r, nil
	}
}
