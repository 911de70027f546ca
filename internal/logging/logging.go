// Package logging carries a request-scoped logrus entry through context.
package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// WithEntry returns a copy of ctx that carries entry.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the entry stored by WithEntry, or a bare entry on the
// standard logger when there is none.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
