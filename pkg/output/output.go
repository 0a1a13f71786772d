// Package output prints messages that have a plain and a styled rendering.
package output

import (
	"io"
)

type Writer interface {
	io.Writer
	IsColorEnabled() bool
	WriteString(s string) (int, error)
}

type Output struct {
	out Writer
	err Writer
}

func New(out, err Writer) *Output {
	return &Output{out: out, err: err}
}

// Text is a message with a plain rendering for pipes and a styled one for
// terminals. An empty Fancy falls back to Plain.
type Text struct {
	Plain string
	Fancy string
}

func (t Text) render(w Writer) string {
	if w.IsColorEnabled() && t.Fancy != "" {
		return t.Fancy
	}
	return t.Plain
}

func (o *Output) Prettyln(t Text) {
	_, _ = o.out.WriteString(t.render(o.out) + "\n")
}

func (o *Output) PrettyErrorln(t Text) {
	_, _ = o.err.WriteString(t.render(o.err) + "\n")
}
