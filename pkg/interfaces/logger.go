package interfaces

import "context"

// LevelLogger writes one entry per call. Args are alternating key/value pairs.
type LevelLogger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

// Logger is what the loader, composer, emitter and generator log through.
// A go-logger glog.Logger satisfies it once wrapped by the gologger adapter.
// WithContext lets an implementation pick up fields stored on ctx, such as
// the build id.
type Logger interface {
	LevelLogger
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out a logger per module name, e.g. "guide.loader".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry fields natively.
// Other loggers get fields appended to each entry instead.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
