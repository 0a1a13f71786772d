// Package progress shows a spinner while long pipeline stages run.
package progress

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

type Progress struct {
	ProgressColorEnabled     bool
	ProgressIndicatorEnabled bool
	progressIndicator        *spinner.Spinner
	progressIndicatorMu      sync.Mutex
}

// StartProgressIndicatorWithLabel starts the spinner, or relabels it if it
// is already running.
func (p *Progress) StartProgressIndicatorWithLabel(label string, s io.Writer) {
	if !p.ProgressIndicatorEnabled {
		return
	}

	p.progressIndicatorMu.Lock()
	defer p.progressIndicatorMu.Unlock()

	prefix := ""
	if label != "" {
		prefix = label + " "
	}
	if p.progressIndicator != nil {
		p.progressIndicator.Lock()
		p.progressIndicator.Prefix = prefix
		p.progressIndicator.Unlock()
		return
	}

	// https://github.com/briandowns/spinner#available-character-sets
	opts := []spinner.Option{spinner.WithWriter(s)}
	charset := spinner.CharSets[14]
	if p.ProgressColorEnabled {
		charset = spinner.CharSets[11]
		opts = append(opts, spinner.WithColor("fgCyan"))
	}
	sp := spinner.New(charset, 120*time.Millisecond, opts...)
	sp.Prefix = prefix
	sp.Start()
	p.progressIndicator = sp
}

func (p *Progress) StopProgressIndicator() {
	p.progressIndicatorMu.Lock()
	defer p.progressIndicatorMu.Unlock()
	if p.progressIndicator == nil {
		return
	}
	p.progressIndicator.Stop()
	p.progressIndicator = nil
}

// RunWithProgress runs fn with the spinner labelled label.
func (p *Progress) RunWithProgress(label string, run func() error, out io.Writer) error {
	p.StartProgressIndicatorWithLabel(label, out)
	defer p.StopProgressIndicator()

	return run()
}

// Stream prints text on its own line, pausing the spinner while doing so.
func (p *Progress) Stream(out io.Writer, text string) {
	p.progressIndicatorMu.Lock()
	defer p.progressIndicatorMu.Unlock()

	active := p.progressIndicator != nil && p.progressIndicator.Active()
	if active {
		p.progressIndicator.Stop()
	}
	_, _ = io.WriteString(out, "\r"+text+"\033[K\n")
	if active {
		p.progressIndicator.Start()
	}
}
