package logging

import (
	"context"
	"maps"
	"slices"

	"github.com/goliatone/go-guide/pkg/interfaces"
)

// WithFields returns logger with fields attached to every entry. Loggers that
// cannot hold fields get them appended to each call's key/value args.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if al, ok := logger.(argsLogger); ok {
		merged := maps.Clone(al.fields)
		maps.Copy(merged, fields)
		return argsLogger{inner: al.inner, fields: merged}
	}
	if fl, ok := logger.(interfaces.FieldsLogger); ok {
		return fl.WithFields(maps.Clone(fields))
	}
	return argsLogger{inner: logger, fields: maps.Clone(fields)}
}

type argsLogger struct {
	inner  interfaces.Logger
	fields map[string]any
}

var (
	_ interfaces.Logger       = argsLogger{}
	_ interfaces.FieldsLogger = argsLogger{}
)

func (l argsLogger) with(args []any) []any {
	out := make([]any, 0, len(args)+len(l.fields)*2)
	out = append(out, args...)
	for _, k := range slices.Sorted(maps.Keys(l.fields)) {
		out = append(out, k, l.fields[k])
	}
	return out
}

func (l argsLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, l.with(args)...) }
func (l argsLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, l.with(args)...) }
func (l argsLogger) Info(msg string, args ...any)  { l.inner.Info(msg, l.with(args)...) }
func (l argsLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.with(args)...) }
func (l argsLogger) Error(msg string, args ...any) { l.inner.Error(msg, l.with(args)...) }
func (l argsLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, l.with(args)...) }

func (l argsLogger) WithFields(fields map[string]any) interfaces.Logger {
	return WithFields(l, fields)
}

func (l argsLogger) WithContext(ctx context.Context) interfaces.Logger {
	return argsLogger{inner: l.inner.WithContext(ctx), fields: l.fields}
}
