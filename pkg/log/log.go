// Package log carries a logrus entry through a context so that every
// pipeline stage logs with the fields of the stage that called it.
package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// L is the fallback entry used when the context carries none.
var L = logrus.NewEntry(logrus.StandardLogger())

// G returns the logger stored in ctx, or L.
func G(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return L
	}
	if entry, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return entry
	}
	return L
}

// WithLogger returns a copy of ctx that carries entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// WithFields is a shorthand for WithLogger(ctx, G(ctx).WithFields(fields)).
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}
